// Terminal front end for the insurance sales conversation.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/etouchhq/insure-chat/internal/api"
	"github.com/etouchhq/insure-chat/internal/chat"
	"github.com/etouchhq/insure-chat/internal/config"
	"github.com/etouchhq/insure-chat/internal/domain"
	"github.com/etouchhq/insure-chat/internal/formstore"
	"github.com/etouchhq/insure-chat/internal/render"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.SlogLevel()),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(api.ClientConfig{
		BaseURL:        cfg.APIBaseURL,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)

	var persister formstore.Persister
	if cfg.MemoryStore {
		persister = formstore.NewMemoryPersister()
	} else {
		persister, err = formstore.NewSQLitePersister(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open form store: %w", err)
		}
	}
	defer func() {
		if closeErr := persister.Close(); closeErr != nil {
			logger.Error("Failed to close form store", "error", closeErr)
		}
	}()

	store, err := formstore.New(client, persister, logger)
	if err != nil {
		return fmt.Errorf("restore form state: %w", err)
	}
	session := chat.NewSession(client, logger)

	fmt.Println("Insurance advisor chat. Type /help for commands.")
	if restored := store.State(); restored.SessionID != "" {
		fmt.Printf("Resuming session %s (step %d, %s)\n",
			restored.SessionID, restored.CurrentStep, restored.SessionState)
		store.LoadFromBackend(ctx, restored.SessionID)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if done := command(ctx, line, session, store, client); done {
				break
			}
			continue
		}

		before := len(session.Messages())
		if err := session.SendMessage(ctx, line, nil, nil); err != nil {
			if errors.Is(err, chat.ErrTurnInFlight) {
				fmt.Println("Please wait for the current reply.")
				continue
			}
			fmt.Println(session.Err())
			continue
		}
		printNewMessages(session.Messages(), before)
		syncSnapshot(ctx, session, store)
	}
	return scanner.Err()
}

// command handles slash commands; it reports whether the loop should end.
func command(ctx context.Context, line string, session *chat.Session, store *formstore.Store, client *api.Client) bool {
	switch line {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println("/reset  start over  |  /state  show form progress  |  /health  check backend  |  /quit  exit")
	case "/reset":
		session.ResetChat(ctx)
		store.ClearSession()
		fmt.Println("Conversation reset.")
	case "/state":
		st := store.State()
		fmt.Printf("session=%s state=%s step=%d\n", st.SessionID, st.SessionState, st.CurrentStep)
		fmt.Printf("personal %d%% | quote %d%% | riders %d%% | payment %d%%\n",
			st.FormCompletion.PersonalDetails.CompletionPercentage,
			st.FormCompletion.InsuranceRequirements.CompletionPercentage,
			st.FormCompletion.RiderSelection.CompletionPercentage,
			st.FormCompletion.PaymentDetails.CompletionPercentage)
	case "/health":
		health, err := client.Health(ctx)
		if err != nil {
			fmt.Println(api.Advisory(err))
			break
		}
		fmt.Printf("backend %s (chat %s, ollama %s)\n", health.Status, health.ChatService, health.OllamaService)
	default:
		fmt.Println("Unknown command. Type /help.")
	}
	return false
}

func printNewMessages(messages []domain.Message, from int) {
	for _, msg := range messages[from:] {
		if msg.Role != domain.RoleBot {
			continue
		}
		fmt.Println(msg.Text)
		if rendered := render.Actions(msg.Actions); rendered != "" {
			fmt.Println(rendered)
		}
	}
}

// syncSnapshot folds the latest backend snapshot into the form store.
func syncSnapshot(ctx context.Context, session *chat.Session, store *formstore.Store) {
	snap := session.Snapshot()
	if snap.SessionID != "" {
		store.SetSessionID(snap.SessionID)
	}
	if snap.CurrentState != "" {
		store.SetSessionState(snap.CurrentState)
	}
	store.SyncWithBackend(ctx)
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
