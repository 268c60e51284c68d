package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/deeprave/mcp-guide-go/internal/configstore"
	"github.com/deeprave/mcp-guide-go/internal/core/events"
	"github.com/deeprave/mcp-guide-go/internal/core/flags"
	"github.com/deeprave/mcp-guide-go/internal/core/render"
	"github.com/deeprave/mcp-guide-go/internal/core/supervisor"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/common"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/probe"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/retry"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/startup"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/workflow"
	"github.com/deeprave/mcp-guide-go/internal/core/tcontext"
	"github.com/deeprave/mcp-guide-go/internal/mcp"
	natsrelay "github.com/deeprave/mcp-guide-go/internal/nats"
	"github.com/deeprave/mcp-guide-go/internal/notify"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	docRoot := flag.String("doc-root", "docs", "Document root templates are resolved against")
	dbPath := flag.String("db", "guide.db", "SQLite path for project/global flag persistence")
	workflowPath := flag.String("workflow", ".guide.yaml", "Path (relative to doc-root) to the monitored workflow file")
	sessionID := flag.String("session", "default", "Session identifier for this server instance")
	relayAddr := flag.String("relay", "", "NATS server URL for the relay bridge; empty disables it")
	embedRelay := flag.Bool("embed-relay", false, "Embed a NATS broker instead of connecting to -relay")
	flag.Parse()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer db.Close()

	fstore := flags.New()
	store := configstore.Open(db, fstore)
	if err := store.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize config store: %v\n", err)
		os.Exit(1)
	}
	if err := store.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load persisted flags: %v\n", err)
		os.Exit(1)
	}

	sup := supervisor.Get()
	cache := tcontext.New()
	cache.Put(*sessionID, tcontext.SessionBase{
		System: map[string]any{"os": os.Getenv("GOOS")},
	})

	env := common.RenderEnv{
		Loader:        render.FileLoader{Root: *docRoot},
		DocRoot:       *docRoot,
		SessionVars:   func() map[string]any { return cache.Vars(*sessionID) },
		ResolvedFlags: func() map[string]flags.Value { return fstore.ResolveAll() },
	}

	toaster := notify.New("guide-core", fmt.Sprintf("http://localhost:%d", *port))

	mcpServer := mcp.NewServer(sup)
	mcp.RegisterDefaultTools(mcpServer, mcp.Services{
		Sup:    sup,
		Env:    env,
		Flags:  fstore,
		Config: store,
	})

	sup.Bus() // ensure bus is constructed before tasks subscribe

	wfTask, err := workflow.Register(sup, env, *workflowPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to register workflow task: %v\n", err)
		os.Exit(1)
	}

	if _, err := probe.Register(sup, env, fstore, tcontext.SessionMerger{Cache: cache, SessionID: *sessionID}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register probe task: %v\n", err)
		os.Exit(1)
	}
	if _, err := startup.Register(sup, env); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register startup task: %v\n", err)
		os.Exit(1)
	}
	if _, err := retry.Register(sup); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register retry task: %v\n", err)
		os.Exit(1)
	}

	var relay *natsrelay.Relay
	var embedded *natsrelay.EmbeddedServer
	if *embedRelay {
		embedded, err = natsrelay.NewEmbeddedServer(natsrelay.EmbeddedServerConfig{Port: 4222})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create embedded relay broker: %v\n", err)
			os.Exit(1)
		}
		if err := embedded.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start embedded relay broker: %v\n", err)
			os.Exit(1)
		}
		defer embedded.Shutdown()
		*relayAddr = embedded.URL()
	}
	if *relayAddr != "" {
		client, err := natsrelay.NewClient(*relayAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to relay at %s: %v\n", *relayAddr, err)
			os.Exit(1)
		}
		defer client.Close()

		relay = natsrelay.NewRelay(client, func(from, to string) {
			rc, err := env.Render(fmt.Sprintf("*%s", to), map[string]any{"from": from, "to": to})
			if err != nil {
				log.Printf("[MAIN] relay-triggered render of %q failed: %v", to, err)
				return
			}
			if rc == nil {
				return
			}
			if instruction := common.Instruction(rc); instruction != "" {
				sup.QueueInstruction(instruction, false)
			}
		})
		if err := relay.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start relay: %v\n", err)
			os.Exit(1)
		}
		defer relay.Stop()
	}

	wfTask.OnPhaseChange(func(from, to string) {
		log.Printf("[MAIN] workflow phase changed: %s -> %s", from, to)
		mcpServer.BroadcastInstruction(fmt.Sprintf("Workflow phase changed: %s -> %s", from, to))
		toaster.NotifyPhaseChange(from, to)
		if relay != nil {
			if err := relay.PublishPhaseChange(*workflowPath, from, to); err != nil {
				log.Printf("[MAIN] relay publish failed: %v", err)
			}
		}
	})
	sup.OnInstructionExhausted(toaster.NotifyInstructionExhausted)

	startupExpr := ""
	if v, ok := fstore.Resolve("startup-instruction"); ok {
		startupExpr, _ = v.(string)
	}
	sup.Dispatch(startup.SessionEventKind, events.Data{Command: *sessionID, Path: startupExpr})

	retryTicker := time.NewTicker(time.Second)
	defer retryTicker.Stop()
	go func() {
		for range retryTicker.C {
			sup.Tick()
		}
	}()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: mcpServer.Router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("[MAIN] listening on %s", httpServer.Addr)
		serverErr <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		}
	case <-shutdown:
		log.Println("[MAIN] shutting down (signal received)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
	}
}
