package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"key_expiry_notifier/internal/app"
	"key_expiry_notifier/internal/infra/config"
	"key_expiry_notifier/internal/infra/logger"
)

var (
	serviceInstance app.NotificationService
	once            sync.Once
	initErr         error
)

func init() {
	// Entry point names as configured on the deployed function. The HTTP
	// variant serves manual and Cloud Scheduler HTTP triggers; the
	// CloudEvent variant serves Pub/Sub scheduler topics.
	functions.HTTP("NotifyExpiringKeys", notifyExpiringKeys)
	functions.CloudEvent("NotifyExpiringKeysEvent", notifyExpiringKeysEvent)
}

// main is required by the Go Functions Framework.
func main() {}

// initService performs one-time initialization of config and clients.
// The cleanup function is deliberately discarded: clients live for the
// whole function instance and are reused across invocations.
func initService() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	logger.Init(cfg)
	serviceInstance, _, initErr = app.BuildNotificationService(context.Background(), cfg, logger.Log)
}

// notifyExpiringKeys runs one notification pass and reports the summary,
// mirroring the scheduled-job contract: 200 plus a summary body on
// success, 500 plus a diagnostic on a fatal manifest failure.
func notifyExpiringKeys(w http.ResponseWriter, r *http.Request) {
	once.Do(initService)
	if initErr != nil {
		logger.Log.Errorf("Critical error during function initialization: %v", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	result, err := serviceInstance.Run(r.Context(), time.Now())
	if err != nil {
		logger.Log.Errorf("Notification run failed: %v", err)
		http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"body": result.Summary()}); err != nil {
		logger.Log.Errorf("Failed to write response: %v", err)
	}
}

// notifyExpiringKeysEvent is the Pub/Sub-triggered twin of the HTTP
// handler. The event payload is an opaque trigger; only its arrival
// matters. Returning an error marks the invocation as failed.
func notifyExpiringKeysEvent(ctx context.Context, e cloudevents.Event) error {
	once.Do(initService)
	if initErr != nil {
		logger.Log.Errorf("Critical error during function initialization: %v", initErr)
		return initErr
	}

	logger.Log.Infof("Notification run triggered by event %s (type %s)", e.ID(), e.Type())
	result, err := serviceInstance.Run(ctx, time.Now())
	if err != nil {
		logger.Log.Errorf("Notification run failed: %v", err)
		return err
	}
	logger.Log.Info(result.Summary())
	return nil
}
