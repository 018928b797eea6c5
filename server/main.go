package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/graphdoc"
	"github.com/meikuraledutech/graphdoc/backend"
	"github.com/meikuraledutech/graphdoc/logging"
	"github.com/meikuraledutech/graphdoc/postgres"
)

type actionBody struct {
	Name    string `json:"name"`
	Args    any    `json:"args"`
	Message string `json:"message"`
}

type createBody struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func main() {
	cfg, envLoaded := loadConfig()
	logger := logging.NewConsole(logging.ConsoleParams{Debug: cfg.Debug, Prefix: "graphdoc"})
	if !envLoaded {
		logger.Log("No .env file found, using system environment variables")
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	registry, err := graphdoc.NewRegistry()
	if err != nil {
		logger.Fatal("layouts", "err", err)
	}
	if cfg.LayoutsFile != "" {
		f, err := os.Open(cfg.LayoutsFile)
		if err != nil {
			logger.Fatal("open layouts file", "err", err)
		}
		err = registry.LoadLayouts(f)
		f.Close()
		if err != nil {
			logger.Fatal("load layouts", "err", err)
		}
	}
	layout, err := registry.Resolve(cfg.Layout, nil)
	if err != nil {
		logger.Fatal("resolve layout", "err", err)
	}
	graphBackend, _ := backend.ForLayout(layout.Name)

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect", "err", err)
	}
	defer pool.Close()

	pg := postgres.New(pool)
	var store graphdoc.Store = pg
	m := newMetrics()

	options := func(docID string) graphdoc.Options {
		return graphdoc.Options{
			DocID:    docID,
			Layout:   layout.Name,
			Registry: registry,
			AutoID:   cfg.AutoID,
			Logger:   logger,
			Backend:  graphBackend,
			OnCommit: m.onCommit,
		}
	}

	go func() {
		if err := http.ListenAndServe(cfg.MetricsAddr, m.handler()); err != nil {
			logger.Error("metrics listener stopped", "err", err)
		}
	}()

	app := fiber.New()

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := pg.CreateSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := pg.DropSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Documents ─────────────────────────────────────────────────────
	app.Post("/graphs", func(c fiber.Ctx) error {
		var body createBody
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		opts := options(body.ID)
		opts.Label = body.Label
		g, err := graphdoc.New(c.Context(), store, opts)
		if err != nil {
			return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(fiber.Map{"id": g.ID(), "layout": g.Layout().Name})
	})

	app.Get("/graphs/:id", func(c fiber.Ctx) error {
		doc, err := store.GetDocument(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(doc)
	})

	app.Delete("/graphs/:id", func(c fiber.Ctx) error {
		if err := store.DeleteDocument(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	app.Get("/graphs/:id/history", func(c fiber.Ctx) error {
		changes, err := store.History(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(changes)
	})

	// ── Actions ───────────────────────────────────────────────────────
	app.Post("/graphs/:id/actions", func(c fiber.Ctx) error {
		var body actionBody
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		fail := func(err error) error {
			status := statusOf(err)
			m.failures.WithLabelValues(body.Name, strconv.Itoa(status)).Inc()
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		op, err := graphdoc.ParseOp(body.Name)
		if err != nil {
			return fail(err)
		}
		g, err := graphdoc.Open(c.Context(), store, c.Params("id"), options(c.Params("id")))
		if err != nil {
			return fail(err)
		}
		if err := g.Apply(c.Context(), op, body.Args); err != nil {
			return fail(err)
		}
		affected, err := g.Commit(c.Context(), body.Message)
		if err != nil {
			return fail(err)
		}
		history := g.History()
		return c.Status(201).JSON(fiber.Map{
			"affected": affected,
			"message":  history[len(history)-1].Message,
		})
	})

	app.Post("/graphs/:id/compact", func(c fiber.Ctx) error {
		g, err := graphdoc.Open(c.Context(), store, c.Params("id"), options(c.Params("id")))
		if err != nil {
			return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
		}
		removed, err := g.Compact(c.Context(), c.Query("message"))
		if err != nil {
			return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"removed": removed})
	})

	// ── Traversable views ─────────────────────────────────────────────
	app.Get("/graphs/:id/nodes", func(c fiber.Ctx) error {
		view, err := traversable(c, store, options(c.Params("id")))
		if err != nil {
			return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(view.Nodes())
	})

	app.Get("/graphs/:id/edges", func(c fiber.Ctx) error {
		view, err := traversable(c, store, options(c.Params("id")))
		if err != nil {
			return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(view.Edges())
	})

	logger.Info("listening", "addr", cfg.ListenAddr, "layout", layout.Name)
	logger.Fatal("server stopped", "err", app.Listen(cfg.ListenAddr))
}

func traversable(c fiber.Ctx, store graphdoc.Store, opts graphdoc.Options) (graphdoc.Traversable, error) {
	g, err := graphdoc.Open(c.Context(), store, opts.DocID, opts)
	if err != nil {
		return nil, err
	}
	return g.ToGraph(c.Context())
}

// statusOf maps graphdoc errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, graphdoc.ErrDocumentNotFound):
		return 404
	case errors.Is(err, graphdoc.ErrReferenceNotFound),
		errors.Is(err, graphdoc.ErrMalformedCollection):
		return 422
	case errors.Is(err, graphdoc.ErrDocumentExists),
		errors.Is(err, graphdoc.ErrDuplicateID),
		errors.Is(err, graphdoc.ErrActionNotCommitted):
		return 409
	case errors.Is(err, graphdoc.ErrMissingRequiredField),
		errors.Is(err, graphdoc.ErrInvalidArgumentShape),
		errors.Is(err, graphdoc.ErrUnknownAction),
		errors.Is(err, graphdoc.ErrMissingCommitMessage),
		errors.Is(err, graphdoc.ErrInvalidLayout):
		return 400
	case errors.Is(err, graphdoc.ErrNoBackend):
		return 501
	}
	return 500
}
