package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"txengine/config"
	"txengine/core"
	"txengine/driver"
)

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve a synchronous HTTP transaction-submission endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			storeDir, _ := cmd.Flags().GetString("store")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if storeDir != "" {
				cfg.StoreDir = storeDir
			}

			store, err := core.OpenFileSubstateStore(cfg.StoreDir)
			if err != nil {
				return err
			}

			limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

			r := mux.NewRouter()
			r.Use(rateLimitMiddleware(limiter))
			r.HandleFunc("/execute", executeHandler(store)).Methods("POST")

			srv := &http.Server{
				Addr:         cfg.ListenAddr,
				Handler:      r,
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  30 * time.Second,
			}
			logrus.WithField("addr", cfg.ListenAddr).Info("txengine serve listening")
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to engine.yaml")
	return cmd
}

// rateLimitMiddleware mirrors cmd/cli/virtual_machine.go's vmRateLimit: one
// shared token bucket guards every request, since a single txengine process
// executes transactions strictly one at a time (§1 non-goals: no concurrent
// transaction execution).
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

type executeRequest struct {
	Manifest string   `json:"manifest"`
	Signers  []string `json:"signers"`
}

func executeHandler(store *core.FileSubstateStore) http.HandlerFunc {
	var mu sync.Mutex
	return func(w http.ResponseWriter, req *http.Request) {
		var body executeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		signers := make([]core.Address, 0, len(body.Signers))
		for _, s := range body.Signers {
			addr, err := core.ParseAddress(s)
			if err != nil {
				http.Error(w, "invalid signer "+s+": "+err.Error(), http.StatusBadRequest)
				return
			}
			signers = append(signers, addr)
		}

		mu.Lock()
		receipt := driver.Execute(body.Manifest, signers, store)
		if receipt.Status == driver.StatusSuccess {
			if err := store.Flush(); err != nil {
				mu.Unlock()
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(receipt)
	}
}
