package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderpricing/internal/catalog"
	"github.com/smallbiznis/orderpricing/internal/checkout"
	checkoutdomain "github.com/smallbiznis/orderpricing/internal/checkout/domain"
	"github.com/smallbiznis/orderpricing/internal/clock"
	"github.com/smallbiznis/orderpricing/internal/condition"
	"github.com/smallbiznis/orderpricing/internal/config"
	"github.com/smallbiznis/orderpricing/internal/discount"
	"github.com/smallbiznis/orderpricing/internal/migration"
	"github.com/smallbiznis/orderpricing/internal/observability"
	"github.com/smallbiznis/orderpricing/internal/seed"
	"github.com/smallbiznis/orderpricing/internal/shipping"
	"github.com/smallbiznis/orderpricing/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	input := flag.String("input", "-", "quote request JSON file, - for stdin")
	seedWorkspace := flag.Int64("seed-workspace", 0, "seed demo pricing data into this workspace before quoting")
	timeout := flag.Duration("timeout", 30*time.Second, "startup and quote timeout")
	flag.Parse()

	if err := run(*input, snowflake.ID(*seedWorkspace), *timeout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(input string, seedWorkspace snowflake.ID, timeout time.Duration) error {
	var (
		svc  checkoutdomain.Service
		conn *gorm.DB
		node *snowflake.Node
		log  *zap.Logger
	)

	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		condition.Module,
		shipping.Module,
		discount.Module,
		catalog.Module,
		checkout.Module,

		fx.Populate(&svc, &conn, &node, &log),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
	}()

	if seedWorkspace != 0 {
		if err := seed.EnsureDemoWorkspace(conn, node, seedWorkspace); err != nil {
			return fmt.Errorf("seed workspace: %w", err)
		}
		log.Info("demo workspace seeded", zap.String("workspace_id", seedWorkspace.String()))
	}

	req, err := readRequest(input)
	if err != nil {
		return err
	}

	quote, err := svc.Quote(ctx, req)
	if err != nil {
		log.Error("quote failed", zap.Error(err))
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(quote)
}

func readRequest(input string) (checkoutdomain.QuoteRequest, error) {
	var r io.Reader = os.Stdin
	if input != "-" && input != "" {
		f, err := os.Open(input)
		if err != nil {
			return checkoutdomain.QuoteRequest{}, err
		}
		defer f.Close()
		r = f
	}

	var req checkoutdomain.QuoteRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode quote request: %w", err)
	}
	return req, nil
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
