package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/interactions-gateway/internal/commands"
	"github.com/morezero/interactions-gateway/internal/config"
	"github.com/morezero/interactions-gateway/internal/server"
	"github.com/morezero/interactions-gateway/pkg/command"
	"github.com/morezero/interactions-gateway/pkg/commsutil"
	"github.com/morezero/interactions-gateway/pkg/events"
	"github.com/morezero/interactions-gateway/pkg/restapi"
	"github.com/morezero/interactions-gateway/pkg/signature"
)

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	reg, err := commands.NewRegistry()
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg, reg, logger)
}

func runDeploy(ctx context.Context, out io.Writer, dryRun bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	handles := commands.Handles()

	if dryRun {
		return printPlan(out, restapi.Plan(handles, cfg.DeployGuildIDs))
	}

	if err := cfg.ValidateForDeploy(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	client, err := restapi.New(cfg.Token, logger)
	if err != nil {
		return fmt.Errorf("create REST client: %w", err)
	}
	result, err := client.Deploy(ctx, cfg.ApplicationID, handles, cfg.DeployGuildIDs)
	if err != nil {
		return err
	}

	scopes := make([]string, 0, len(result))
	for scope := range result {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		fmt.Fprintf(out, "%s: %d commands\n", scopeLabel(scope), result[scope])
	}
	return nil
}

func printPlan(out io.Writer, plan map[string][]*discordgo.ApplicationCommand) error {
	scopes := make([]string, 0, len(plan))
	for scope := range plan {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		names := make([]string, 0, len(plan[scope]))
		for _, c := range plan[scope] {
			names = append(names, c.Name)
		}
		fmt.Fprintf(out, "%s: %s\n", scopeLabel(scope), strings.Join(names, ", "))
	}
	return nil
}

func scopeLabel(scope string) string {
	if scope == "" {
		return "global"
	}
	return "guild " + scope
}

func runCommands(out io.Writer) error {
	reg, err := commands.NewRegistry()
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	for _, h := range reg.Commands() {
		caps := command.CapabilitiesOf(h)
		var hooks []string
		for _, hook := range []struct {
			name string
			ok   bool
		}{
			{"chat", caps.ChatInput != nil},
			{"context-menu", caps.ContextMenu != nil},
			{"autocomplete", caps.Autocomplete != nil},
			{"component", caps.Component != nil},
			{"modal", caps.Modal != nil},
		} {
			if hook.ok {
				hooks = append(hooks, hook.name)
			}
		}
		names := make([]string, 0, len(h.Preconditions()))
		for _, name := range h.Preconditions() {
			if _, ok := reg.Precondition(name); !ok {
				name += "(missing)"
			}
			names = append(names, name)
		}
		preconditions := strings.Join(names, ",")
		if preconditions == "" {
			preconditions = "-"
		}
		fmt.Fprintf(out, "%-18s %-40s %s\n", h.Name(), strings.Join(hooks, ","), preconditions)
	}
	return nil
}

func runTail(ctx context.Context, out io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.COMMSURL == "" {
		return fmt.Errorf("%s - COMMS_URL is required to tail events", logPrefix)
	}
	logger := newLogger(cfg)

	nc, err := commsutil.Connect(commsutil.ConnectOptions{
		URL:    cfg.COMMSURL,
		Name:   cfg.COMMSName + "-tail",
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
	}
	defer nc.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tailEvents(ctx, nc, cfg.InteractionSubject, logger, out)
}

// tailEvents prints each dispatch event until ctx is done.
func tailEvents(ctx context.Context, nc *comms.Conn, subject string, logger *slog.Logger, out io.Writer) error {
	lines := make(chan string, 64)
	sub, err := events.SubscribeDispatched(nc, subject, logger, func(e *events.InteractionDispatchedEvent) {
		select {
		case lines <- formatEvent(e):
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-lines:
			fmt.Fprintln(out, line)
		}
	}
}

func formatEvent(e *events.InteractionDispatchedEvent) string {
	name := e.Command
	if name == "" {
		name = "-"
	}
	line := fmt.Sprintf("%s %-12s %-18s %-8s %4dms", e.Timestamp, e.Kind, name, e.Outcome, e.DurationMs)
	if e.ErrorKind != "" {
		line += " error=" + e.ErrorKind
	}
	if e.UserID != "" {
		line += " user=" + e.UserID
	}
	return line
}

func runKeygen(out io.Writer) error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	fmt.Fprintf(out, "DISCORD_PUBLIC_KEY=%s\n", hex.EncodeToString(pub))
	fmt.Fprintf(out, "DISCORD_PRIVATE_KEY=%s\n", hex.EncodeToString(priv.Seed()))
	return nil
}

func runSign(out io.Writer, keyHex, timestamp, url, body string) error {
	key, err := parsePrivateKey(keyHex)
	if err != nil {
		return err
	}
	if timestamp == "" {
		timestamp = strconv.FormatInt(time.Now().Unix(), 10)
	}
	sig := signature.Sign(key, timestamp, []byte(body))

	fmt.Fprintf(out, "curl -sS -X POST %s \\\n", url)
	fmt.Fprintf(out, "  -H 'Content-Type: application/json' \\\n")
	fmt.Fprintf(out, "  -H '%s: %s' \\\n", signature.HeaderSignature, sig)
	fmt.Fprintf(out, "  -H '%s: %s' \\\n", signature.HeaderTimestamp, timestamp)
	fmt.Fprintf(out, "  --data '%s'\n", strings.ReplaceAll(body, "'", `'\''`))
	return nil
}

// parsePrivateKey accepts a hex Ed25519 seed or full private key.
func parsePrivateKey(keyHex string) (ed25519.PrivateKey, error) {
	if keyHex == "" {
		return nil, fmt.Errorf("%s - a private key is required (--key or DISCORD_PRIVATE_KEY)", logPrefix)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil {
		return nil, fmt.Errorf("%s - private key is not hex: %w", logPrefix, err)
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("%s - private key must be %d or %d bytes, got %d", logPrefix, ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}
