package costing

import (
	"sort"
	"time"
)

type eventKind int

// El orden numérico define el desempate: a igual fecha la entrada va primero.
const (
	eventEntry eventKind = iota
	eventConsumption
)

type event struct {
	kind  eventKind
	entry PricedEntry
	cons  Consumption
	date  time.Time
}

// Reconstruct reproduce entradas y consumos en orden cronológico y devuelve los lotes
// que sobreviven a la fecha de corte.
//
// Solo participan entradas con costo > 0 y consumos que no son traslados; todo lo que
// esté fuera de la ventana [cutoff-Lookback, cutoff] se ignora. Una entrada y un consumo
// con la misma fecha se procesan en ese orden. Si un consumo histórico excede los lotes
// disponibles, el faltante se descarta: solo pudo cubrirse con stock sin costo.
func Reconstruct(entries []PricedEntry, consumptions []Consumption, cutoff time.Time, p Params) []Lot {
	events := make([]event, 0, len(entries)+len(consumptions))
	for _, e := range entries {
		if !e.UnitCost.IsPositive() || !e.Quantity.IsPositive() || !p.inWindow(e.Date, cutoff) {
			continue
		}
		events = append(events, event{kind: eventEntry, entry: e, date: e.Date})
	}
	for _, c := range consumptions {
		if c.IsTransfer || !c.Quantity.IsPositive() || !p.inWindow(c.Date, cutoff) {
			continue
		}
		events = append(events, event{kind: eventConsumption, cons: c, date: c.Date})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].date.Equal(events[j].date) {
			return events[i].date.Before(events[j].date)
		}
		return events[i].kind < events[j].kind
	})

	lots := make([]Lot, 0, len(entries))
	for _, ev := range events {
		switch ev.kind {
		case eventEntry:
			lots = append(lots, Lot{
				EntryID:   ev.entry.ID,
				Quantity:  ev.entry.Quantity,
				UnitCost:  ev.entry.UnitCost,
				EntryDate: ev.entry.Date,
			})
		case eventConsumption:
			lots = Consume(lots, ev.cons.Quantity, ev.cons.Date, p.Epsilon).Lots
		}
	}
	return lots
}
