// Package main runs the interactive vocabulary client: collect words,
// check them against the word server, generate collocations and submit
// the pending queue.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/phihung0131/vocabulary-extension/internal/apperr"
	"github.com/phihung0131/vocabulary-extension/internal/cache"
	"github.com/phihung0131/vocabulary-extension/internal/config"
	"github.com/phihung0131/vocabulary-extension/internal/httpclient"
	"github.com/phihung0131/vocabulary-extension/internal/logger"
	"github.com/phihung0131/vocabulary-extension/internal/secrets"
	"github.com/phihung0131/vocabulary-extension/internal/store"
	"github.com/phihung0131/vocabulary-extension/internal/vocab"
)

var (
	version   string
	buildDate string
)

// sweepInterval is how often expired cache entries are reclaimed.
const sweepInterval = time.Hour

// repl runs the interactive shell loop, accepting commands to manage the
// collected vocabulary.
func repl(ctx context.Context, client *vocab.Client, secretStore *secrets.SecretStore) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("vocab> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			printHelp()

		case "add":
			word, err := client.AddWord(strings.Join(args[1:], " "))
			if err != nil {
				printErr(err)
				continue
			}
			fmt.Printf("queued %q\n", word)

		case "check":
			exists, err := client.CheckWord(ctx, strings.Join(args[1:], " "))
			if err != nil {
				printErr(err)
				continue
			}
			if exists {
				fmt.Println("already on the server")
			} else {
				fmt.Println("not on the server yet")
			}

		case "generate":
			collocations, err := client.GenerateCollocations(ctx, strings.Join(args[1:], " "))
			if err != nil {
				printErr(err)
				continue
			}
			for _, c := range collocations {
				fmt.Printf("- %s", c.Collocation)
				if c.Meaning != "" {
					fmt.Printf(": %s", c.Meaning)
				}
				fmt.Println()
			}

		case "queue":
			items, err := client.Queue().List()
			if err != nil {
				printErr(err)
				continue
			}
			if len(items) == 0 {
				fmt.Println("queue is empty")
				continue
			}
			for _, item := range items {
				fmt.Printf("%s\t%s\t%s", item.Word, item.Status, item.AddedAt.Format(time.RFC3339))
				if item.Error != "" {
					fmt.Printf("\t%s", item.Error)
				}
				fmt.Println()
			}

		case "submit":
			n, err := client.Submit(ctx)
			if err != nil {
				printErr(err)
				continue
			}
			fmt.Printf("submitted %d word(s)\n", n)

		case "list":
			collocations, err := client.List(ctx)
			if err != nil {
				printErr(err)
				continue
			}
			for _, c := range collocations {
				fmt.Printf("%s: %s\n", c.Word, c.Collocation)
			}

		case "export":
			if len(args) < 2 {
				fmt.Println("usage: export <file>")
				continue
			}
			f, err := os.Create(args[1])
			if err != nil {
				printErr(err)
				continue
			}
			err = client.ExportCSV(ctx, f)
			f.Close()
			if err != nil {
				printErr(err)
				continue
			}
			fmt.Printf("exported to %s\n", args[1])

		case "delete-all":
			n, err := client.DeleteAll(ctx)
			if err != nil {
				printErr(err)
				continue
			}
			fmt.Printf("deleted %d collocation(s)\n", n)

		case "set-key":
			if len(args) < 2 {
				fmt.Println("usage: set-key <api-key>")
				continue
			}
			if err := secretStore.Set(vocab.APIKeySecret, args[1]); err != nil {
				printErr(err)
				continue
			}
			fmt.Println("API key saved")

		case "del-key":
			if err := secretStore.Delete(vocab.APIKeySecret); err != nil {
				printErr(err)
				continue
			}
			fmt.Println("API key removed")

		case "exit", "quit":
			return

		default:
			fmt.Println("unknown command, try: help")
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  add <word>        queue a word for submission
  check <word>      check whether the server already has the word
  generate <word>   show AI-generated collocations for the word
  queue             list pending words
  submit            submit all pending words
  list              list collocations stored on the server
  export <file>     export server collocations as CSV
  delete-all        delete every collocation on the server
  set-key <key>     store the AI API key
  del-key           remove the AI API key
  exit`)
}

func printErr(err error) {
	fmt.Printf("error: %v (%s)\n", err, apperr.MessageKey(err))
}

func main() {
	options := config.Parse()

	fmt.Printf("vocab client %s (%s)\n", version, buildDate)

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	localStore, err := store.OpenBolt(options.StorePath)
	if err != nil {
		zapLogger.Fatal("cannot open local store", zap.Error(err))
	}
	defer localStore.Close()

	installID, err := secrets.InstallationID()
	if err != nil {
		zapLogger.Fatal("cannot determine installation id", zap.Error(err))
	}
	secretStore := secrets.New(localStore, installID, zapLogger)
	// Pick up an API key left behind by a pre-encryption install.
	secretStore.MigrateSecret(vocab.APIKeySecret)

	client := vocab.New(vocab.Config{
		Store:      localStore,
		HTTP:       httpclient.New(&http.Client{}, zapLogger),
		Secrets:    secretStore,
		Logger:     zapLogger,
		ServerURL:  options.ServerURL,
		AIEndpoint: options.AIEndpoint,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache.StartSweeper(ctx, sweepInterval, zapLogger, client.Caches()...)

	repl(ctx, client, secretStore)
}
