// Command costctl herramienta de operador para el costeo FIFO del libro de combustible.
//
//	costctl replay --file pagina1.json [--file pagina2.json] --warehouse W --product P --quantity Q --as-of T
//	costctl preview --warehouse W --product P --quantity Q [--env-file .env.prod]
//	costctl warehouse --id W --company C --plant "Planta Norte" --name "Bodega 1"
//	costctl product --id P --company C --code DIESEL --name "Diésel"
//	costctl token --user U --company C --role bodeguero
package main

import (
	"github.com/alecthomas/kong"
)

var cli struct {
	Replay    ReplayCmd    `cmd:"" help:"Costear un retiro sobre una foto JSON del libro (sin base de datos)."`
	Preview   PreviewCmd   `cmd:"" help:"Costear un retiro contra el libro configurado."`
	Warehouse WarehouseCmd `cmd:"" help:"Registrar una bodega."`
	Product   ProductCmd   `cmd:"" help:"Registrar un producto."`
	Token     TokenCmd     `cmd:"" help:"Emitir un token de acceso."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("costctl"),
		kong.Description("Costeo FIFO de diésel y urea por bodega."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
