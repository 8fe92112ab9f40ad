package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"path/filepath"

	"github.com/julienschmidt/httprouter"
	"github.com/neilgarb/solo"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "listen address, overrides the config")
	dataDir := flag.String("data", "", "data directory, overrides the config")
	flag.Parse()

	cfg, err := solo.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	log, err := cfg.Logger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	store, err := solo.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatal("open data dir", zap.Error(err))
	}
	progress := solo.LoadProgress(store, cfg.Rewards, log)
	manager := solo.NewManager(cfg, progress, log)

	r := httprouter.New()

	r.GET("/ws", websocketHandler(manager, log))
	r.GET("/api/progress", progressHandler(progress))
	r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	clientDir := cfg.ClientDir
	if !filepath.IsAbs(clientDir) {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatal("getwd", zap.Error(err))
		}
		clientDir = filepath.Join(wd, clientDir)
	}
	r.ServeFiles("/client/*filepath", http.Dir(clientDir))

	log.Info("listening", zap.String("addr", cfg.Addr), zap.String("data", cfg.DataDir))
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal("serve", zap.Error(err))
	}
}

type wsConn struct {
	*websocket.Conn
}

func (c wsConn) Send(msg *solo.Message) error {
	return websocket.JSON.Send(c.Conn, msg)
}

func (c wsConn) RemoteAddr() string {
	return c.Request().RemoteAddr
}

func websocketHandler(manager *solo.Manager, log *zap.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		websocket.Handler(func(ws *websocket.Conn) {
			conn := wsConn{ws}
			manager.Connect(conn)
			defer manager.Disconnect(conn)
			defer ws.Close()

			for {
				var msg solo.Message
				if err := websocket.JSON.Receive(ws, &msg); err != nil {
					return
				}

				if err := manager.Handle(conn, &msg); err != nil {
					log.Debug("declined", zap.String("type", msg.Type), zap.Error(err))
					errMsg := solo.MakeMessage("error", solo.ErrorMessage(err.Error()))
					if err := conn.Send(errMsg); err != nil {
						return
					}
				}
			}
		}).ServeHTTP(w, r)
	}
}

func progressHandler(progress *solo.Progress) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(solo.NewProgressMessage(progress.State()))
	}
}
