package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/adapter/queue"
	"github.com/saathi-ai/saathi-core/internal/domain"
)

var (
	natsURL  = flag.String("nats", "nats://localhost:4222", "NATS server URL")
	subject  = flag.String("subject", "saathi.messages.inbound", "Subject to publish inbound messages on")
	userID   = flag.String("user", "", "User ID to send as (random per message when empty)")
	phone    = flag.String("phone", "+919876543210", "Phone number attached to messages")
	interval = flag.Duration("interval", 3*time.Second, "Delay between messages")
	count    = flag.Int("count", 0, "Number of messages to send (0 = until interrupted)")
	verbose  = flag.Bool("verbose", false, "Enable verbose logging")
)

// Synthetic worker traffic. Deliberately code-mixed and messy: that is
// what real inbound text looks like.
var samples = []struct {
	text     string
	language string
}{
	{"Aaj kitna kamaya?", "hi"},
	{"is hafte ki earning batao", "hi"},
	{"How much did I earn this month on Zomato", "en"},
	{"swiggy ne mera payment kaat liya ₹२५० ka", "hi"},
	{"Rapido wale payment nahi de rahe, complaint karni hai", "hi"},
	{"mera accident insurance hai kya delivery ke time", "hi"},
	{"e-shram card kaise banega", "hi"},
	{"loan chahiye bike ke liye, kahan se milega", "hi"},
	{"Namaste", "hi"},
	{"hello ji", "en"},
	{"kal blinkit pe kitne order kiye maine", "hi"},
	{"urban company ne job cancel kar di bina bataye", "hi"},
	{"asdfgh qwerty", "hi"},
}

func main() {
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	mq, err := queue.NewNATSQueue(*natsURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer mq.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Saathi traffic simulator started\n")
	fmt.Printf("  NATS: %s\n", *natsURL)
	fmt.Printf("  Subject: %s\n", *subject)
	fmt.Println("\nPress Ctrl+C to stop")

	sent := 0
	for {
		select {
		case <-sigChan:
			fmt.Println("\nShutting down simulator...")
			logger.Info("Simulator stopped", zap.Int("messages_sent", sent))
			return
		case <-ticker.C:
			if err := publishOne(mq, logger); err != nil {
				logger.Error("Failed to publish message", zap.Error(err))
				continue
			}
			sent++
			if *count > 0 && sent >= *count {
				logger.Info("Simulator finished", zap.Int("messages_sent", sent))
				return
			}
		}
	}
}

func publishOne(mq queue.MessageQueue, logger *zap.Logger) error {
	sample := samples[rand.Intn(len(samples))]

	uid := *userID
	if uid == "" {
		uid = uuid.New().String()
	}

	msg := domain.InboundMessage{
		ID:       uuid.New().String(),
		UserID:   uid,
		Phone:    *phone,
		Text:     sample.text,
		Language: sample.language,
		SentAt:   time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := mq.Publish(*subject, data); err != nil {
		return err
	}

	logger.Info("Published inbound message",
		zap.String("message_id", msg.ID),
		zap.String("user_id", msg.UserID),
		zap.String("text", msg.Text))
	return nil
}
