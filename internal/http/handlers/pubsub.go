package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/babyfoot-ledger/internal/processor"
	"github.com/mauv0809/babyfoot-ledger/internal/pubsub"
)

// PushMessage is the envelope Cloud Pub/Sub push subscriptions POST to the service.
type PushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}

// PubSubPushHandler receives ledger events on /pubsub/{topic} and hands them to the processor.
func PubSubPushHandler(proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := pubsub.EventType(chi.URLParam(r, "topic"))
		if !topic.Valid() {
			log.Warn("Received push for unknown topic", "topic", topic)
			http.Error(w, "Unknown topic", http.StatusNotFound)
			return
		}

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received push message", "topic", topic, "body", string(bodyBytes))

		var pubsubMsg PushMessage
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		// A non-2xx answer makes Pub/Sub redeliver the message.
		if err := proc.HandleMessage(topic, rawData, IsDryRunFromContext(r)); err != nil {
			log.Error("Failed to handle push message", "error", err, "topic", topic, "messageID", pubsubMsg.Message.MessageID)
			http.Error(w, "Failed to handle message", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
