package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"symposium/internal/discussion"
	"symposium/internal/llm"
	llmclient "symposium/internal/llmClient"
	"symposium/internal/notify"
	"symposium/internal/roster"
)

func main() {
	participants := flag.String("participants", "", "comma-separated participant ids or names (2-4)")
	moderator := flag.String("moderator", "", "participant who moderates")
	topic := flag.String("topic", "", "discussion topic")
	provider := flag.String("provider", "", "llm provider: gemini, groq or fake")
	model := flag.String("model", "", "model id (provider default when empty)")
	rosterPath := flag.String("roster", "", "roster file (yaml or json)")
	list := flag.Bool("list", false, "list participants and topics, then exit")
	flag.Parse()

	_ = godotenv.Load()
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := loadRoster(ctx, *rosterPath)
	if err != nil {
		log.Fatal(err)
	}
	th := newTheme()
	if *list {
		fmt.Print(renderRoster(th, r))
		return
	}

	name := resolveProvider(*provider)
	client, err := llmclient.New(ctx, name, providerKey(name), *model)
	if err != nil {
		log.Fatal(err)
	}
	client = llm.Wrap(client, llm.RateLimitFromEnv("LLM"))
	defer client.Close()

	o, err := discussion.New(discussion.Config{
		Client: client,
		Sink: notify.SinkFunc(func(n notify.Notification) {
			fmt.Fprintln(os.Stderr, renderNotification(th, n))
		}),
		RequireModerator: *moderator != "",
		BaseContext:      ctx,
		Logger:           log.New(os.Stderr, "", 0),
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := applySelection(o, r, *participants, *moderator, *topic); err != nil {
		log.Fatal(err)
	}
	if n, ok := topicNotice(r, *topic); ok {
		fmt.Fprintln(os.Stderr, renderNotification(th, n))
	}

	st, err := o.Generate(ctx)
	if err != nil {
		var ge *discussion.GenerationError
		if errors.As(err, &ge) && len(st.Transcript) > 0 {
			fmt.Print(renderTranscript(th, st.Transcript))
		}
		os.Exit(1)
	}
	fmt.Print(renderTranscript(th, st.Transcript))
}

func loadRoster(ctx context.Context, path string) (*roster.Roster, error) {
	if strings.TrimSpace(path) == "" {
		return roster.Default(), nil
	}
	return roster.NewFileSource(path).Load(ctx)
}

func resolveProvider(flagValue string) string {
	if p := strings.ToLower(strings.TrimSpace(flagValue)); p != "" {
		return p
	}
	if p := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))); p != "" {
		return p
	}
	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		return llmclient.ProviderGemini
	case os.Getenv("GROQ_API_KEY") != "":
		return llmclient.ProviderGroq
	default:
		return llmclient.ProviderFake
	}
}

func providerKey(provider string) string {
	switch provider {
	case llmclient.ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	case llmclient.ProviderGroq:
		return os.Getenv("GROQ_API_KEY")
	default:
		return ""
	}
}

// applySelection toggles each listed participant, then sets moderator and
// topic. Unknown names are reported before anything is selected.
func applySelection(o *discussion.Orchestrator, r *roster.Roster, participants, moderator, topic string) error {
	var picked []roster.Participant
	seen := map[string]bool{}
	for _, key := range strings.Split(participants, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		p, ok := r.Lookup(key)
		if !ok {
			return fmt.Errorf("unknown participant %q (use -list)", key)
		}
		// Toggling twice would deselect.
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		picked = append(picked, p)
	}
	for _, p := range picked {
		if _, err := o.ToggleParticipant(p); err != nil {
			return err
		}
	}
	if m := strings.TrimSpace(moderator); m != "" {
		p, ok := r.Lookup(m)
		if !ok {
			return fmt.Errorf("unknown moderator %q (use -list)", m)
		}
		if err := o.SetModerator(p); err != nil {
			return err
		}
	}
	o.SetTopic(topic)
	return nil
}

// topicNotice reports a topic that is not one of the roster's suggestions.
func topicNotice(r *roster.Roster, topic string) (notify.Notification, bool) {
	topic = strings.TrimSpace(topic)
	if topic == "" || r.HasTopic(topic) {
		return notify.Notification{}, false
	}
	return notify.Notification{
		Title:       "Custom topic",
		Description: fmt.Sprintf("%q is not in the topic list.", topic),
		Severity:    notify.SeverityInfo,
	}, true
}
