// Command deltad runs the delta collaboration server: a websocket hub
// for live document editing plus a small REST surface, backed by a
// write-behind cache over an in-memory or Firestore document store.
package main

import (
	"context"
	"log"
	"net/http"

	firestore "cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"

	"github.com/alimasry/deltadoc/config"
	"github.com/alimasry/deltadoc/delta"
	"github.com/alimasry/deltadoc/httpapi"
	"github.com/alimasry/deltadoc/ot"
	"github.com/alimasry/deltadoc/presence"
	"github.com/alimasry/deltadoc/server"
	"github.com/alimasry/deltadoc/store"
)

func main() {
	cfg, err := config.Load("./config", ".")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	docStore, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("build document store: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("presence: redis unavailable at %s, presence tracking disabled: %v", cfg.Redis.Addr, err)
		rdb = nil
	}
	var tracker *presence.Tracker
	if rdb != nil {
		tracker = presence.NewTracker(rdb, cfg.Redis.PresenceTTL)
	}

	engine := &ot.JupiterEngine{}
	embeds := delta.NewRegistry()

	hub := server.NewHub(docStore, engine, embeds, tracker)
	go hub.Run()

	router := httpapi.NewRouter(docStore)
	mux := http.NewServeMux()
	mux.Handle("/", server.NewHandler(hub))
	mux.Handle("/api/", router)
	mux.Handle("/healthz", router)

	log.Printf("deltad listening on %s", cfg.Running.Addr)
	if err := http.ListenAndServe(cfg.Running.Addr, mux); err != nil {
		log.Fatal(err)
	}
}

func buildStore(cfg *config.Config) (store.DocumentStore, error) {
	if cfg.Firestore.ProjectID == "" {
		mem := store.NewMemoryStore()
		return store.NewCachedStore(mem, cfg.Cache.FlushInterval), nil
	}
	client, err := firestore.NewClient(context.Background(), cfg.Firestore.ProjectID)
	if err != nil {
		return nil, err
	}
	backing := store.NewFirestoreStore(client)
	return store.NewCachedStore(backing, cfg.Cache.FlushInterval), nil
}
