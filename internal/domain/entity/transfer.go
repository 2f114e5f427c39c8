package entity

// Estados de un traslado entre bodegas.
// Requested → Costed → BothLegsWritten, o Requested → Rejected (sin escrituras).
const (
	TransferStateRequested       = "REQUESTED"
	TransferStateCosted          = "COSTED"
	TransferStateBothLegsWritten = "BOTH_LEGS_WRITTEN"
	TransferStateRejected        = "REJECTED"
)
