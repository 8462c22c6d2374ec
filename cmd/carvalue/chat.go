package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carvalue/internal/model"
	"carvalue/internal/preferences"
	"carvalue/internal/repository"
	"carvalue/internal/service"
)

var thinkingDelay time.Duration

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Describe your car in a conversation",
	Long: `Start an interactive chat. Describe the car in any order, for example
"Toyota Innova 2024, 50000 km, good condition", and the assistant asks for
whatever is still missing before it values the car.

Commands: /examples, /theme, /reset, /quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().DurationVar(&thinkingDelay, "thinking-delay", time.Second, "Pause before each assistant reply")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	estimator, err := service.NewEstimator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize valuation backend: %w", err)
	}
	valuations := service.NewValuationService(estimator, nil, logger)

	prefs := openPrefs()
	conversations := service.NewConversationService(
		repository.NewSessionStore(cfg.Chat.SessionTTL),
		valuations,
		service.ConversationConfig{ThinkingDelay: thinkingDelay, DefaultDarkMode: darkMode(prefs)},
		logger,
	)
	if cfg.Chat.AIExtraction {
		if pe, ok := estimator.(*service.PromptEstimator); ok {
			conversations.WithFieldFiller(service.NewAIFieldExtractor(pe.Generator(), logger))
		}
	}

	logger.Debug("chat started", zap.String("provider", estimator.Name()))
	return chatLoop(ctx, conversations, prefs, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop reads one utterance per line until EOF or /quit
func chatLoop(ctx context.Context, conversations *service.ConversationService, prefs preferences.Store, in io.Reader, out io.Writer) error {
	session := conversations.CreateSession()
	dark := darkMode(prefs)
	st := newStyles(dark)

	printAssistant(out, session.Messages[0].Content, dark)
	fmt.Fprintln(out, styled(st.Status, "Type /examples for sample descriptions, /quit to leave."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, styled(st.Prompt, ">")+" ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/examples":
			for _, p := range service.QuickPrompts {
				fmt.Fprintf(out, "  %s: %s\n", p.Label, p.Text)
			}
			continue
		case "/theme":
			dark = !dark
			st = newStyles(dark)
			if err := prefs.SetDarkMode(dark); err != nil {
				logger.Warn("could not save theme preference", zap.Error(err))
			}
			fmt.Fprintf(out, "Theme: %s\n", themeName(dark))
			continue
		case "/reset":
			_ = conversations.DeleteSession(session.ID)
			session = conversations.CreateSession()
			printAssistant(out, session.Messages[0].Content, dark)
			continue
		}

		_, err := conversations.HandleTurn(ctx, session.ID, line, func(event string, data any) error {
			msg, ok := data.(model.Message)
			if !ok {
				return nil
			}
			switch event {
			case service.EventStatus:
				fmt.Fprintln(out, styled(st.Status, msg.Content))
			case service.EventMessage:
				printAssistant(out, msg.Content, dark)
			}
			return nil
		})
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, service.ErrSessionNotFound):
			// idle past the session TTL
			session = conversations.CreateSession()
			fmt.Fprintln(out, "Your session expired, let's start again.")
			printAssistant(out, session.Messages[0].Content, dark)
		default:
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
