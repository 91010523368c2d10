/*Offline-first client for the pocketbook transaction service*/
package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// globals holds options shared by every command
type globals struct {
	API       string `env:"POCKETBOOK_API" default:"http://localhost:4000" help:"Base URL of the transaction service."`
	Queue     string `env:"POCKETBOOK_QUEUE" default:"pocketbook-queue.json" help:"Path of the durable offline queue."`
	QueueKey  string `env:"POCKETBOOK_QUEUE_KEY" help:"Encrypt the queue file at rest with this key (32+ chars)."`
	QueueSig  string `env:"POCKETBOOK_QUEUE_SIG" help:"Sign the queue file at rest with this key (32+ chars)."`
	Archive   string `env:"POCKETBOOK_ARCHIVE" help:"Archive fetched transactions [jsonfile:/path/file.json es8:http://myelasticsearch:9200]."`
	Heartbeat int    `env:"POCKETBOOK_HEARTBEAT" default:"5" help:"Seconds between backend liveness probes."`
}

// cli commands / args available
var cli struct {
	Ctx globals `embed:""`

	Add     addCmd     `cmd:"" help:"Record a transaction, queued locally if the backend is unreachable."`
	Update  updateCmd  `cmd:"" help:"Rewrite a transaction by server id."`
	Delete  deleteCmd  `cmd:"" help:"Delete a transaction by server id."`
	List    listCmd    `cmd:"" help:"Show a page of transactions."`
	Stats   statsCmd   `cmd:"" help:"Show the server's stats summary."`
	Pending pendingCmd `cmd:"" help:"Show mutations waiting in the offline queue."`
	Sync    syncCmd    `cmd:"" help:"Drain the offline queue now, if the backend is reachable."`
	Watch   watchCmd   `cmd:"" help:"Run the live client: heartbeat, push channel and periodic refresh."`
}

func main() {
	godotenv.Load() // a missing .env is fine

	ctx := kong.Parse(&cli)
	err := ctx.Run(&cli.Ctx)
	ctx.FatalIfErrorf(err)
}
