package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"shelfmark/internal/adapters/memtree"
	mcpadapter "shelfmark/internal/adapters/mcp"
	"shelfmark/internal/adapters/sqlitekv"
	"shelfmark/internal/application/editor"
	"shelfmark/internal/application/learner"
	"shelfmark/internal/application/syncer"
	"shelfmark/internal/config"
	"shelfmark/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("shelfmark-mcp: %v", err)
	}

	treeFlag := flag.String("tree", "", "path to the bookmark tree JSON export")
	dbFlag := flag.String("db", cfg.DBPath, "path to the learning state database")
	rootFlag := flag.String("root-folder", cfg.RootFolder, "folder to sync under")
	flag.Parse()

	// stdout carries the protocol; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	store, err := loadStore(*treeFlag)
	if err != nil {
		log.Fatalf("shelfmark-mcp: %v", err)
	}

	ctx := context.Background()
	session := &mcpadapter.Session{Store: store}

	var syncOpts []syncer.Option
	if *rootFlag != "" {
		syncOpts = append(syncOpts, syncer.WithRootFolderName(*rootFlag))
	}
	session.Syncer = syncer.New(store, syncOpts...)
	session.Editor = editor.New()

	if *dbFlag != "" {
		kv, err := sqlitekv.Open(*dbFlag)
		if err != nil {
			log.Fatalf("shelfmark-mcp: %v", err)
		}
		defer kv.Close()
		session.Learner = learner.New(ctx, kv)
	} else {
		session.Learner = learner.New(ctx, nil)
	}

	mcpServer := server.NewMCPServer(
		"shelfmark-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, session)
	mcpadapter.RegisterWriteTools(mcpServer, session)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("shelfmark-mcp: %v", err)
	}
}

func loadStore(treePath string) (*memtree.Store, error) {
	if treePath == "" {
		return memtree.New(), nil
	}
	raw, err := os.ReadFile(treePath)
	if err != nil {
		return nil, err
	}
	var root domain.Node
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	return memtree.FromTree(&root)
}
