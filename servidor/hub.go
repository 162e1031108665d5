package main

import (
	"net/http"
	"sync"

	"SpriteVision/shared/logging"
	"SpriteVision/shared/proto/svnet"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var errClientGone = errors.New("cliente não encontrado no hub")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan [][]byte
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.Mutex
	log        logging.Logger
}

func newHub(log logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan [][]byte, 256),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		log:        logging.OrNop(log),
	}
}

// Register adiciona a conexão e escreve initial nela antes que qualquer lote
// do broadcast chegue. Se a escrita falhar a conexão é removida.
func (h *Hub) Register(conn *websocket.Conn, initial ...[]byte) error {
	lock := &sync.Mutex{}
	lock.Lock()
	h.mu.Lock()
	h.clients[conn] = lock
	h.mu.Unlock()
	h.log.Infow("Cliente registrado", "addr", conn.RemoteAddr().String())

	for _, data := range initial {
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			lock.Unlock()
			h.drop(conn)
			return err
		}
	}
	lock.Unlock()
	return nil
}

// Unregister remove e fecha a conexão. Pode ser chamado depois de Stop.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
		h.drop(conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if !ok {
		return
	}
	lock.Lock()
	conn.Close()
	lock.Unlock()
	h.log.Infow("Cliente desregistrado", "addr", conn.RemoteAddr().String())
}

// Len retorna quantos clientes estão conectados.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			h.log.Errorw("Recuperado de pânico fatal", "panic", r)
		}
	}()

	for {
		select {
		case <-h.done:
			return
		case conn := <-h.unregister:
			h.drop(conn)
		case batch := <-h.broadcast:
			h.mu.Lock()
			type clientEntry struct {
				conn *websocket.Conn
				lock *sync.Mutex
			}
			targets := make([]clientEntry, 0, len(h.clients))
			for c, l := range h.clients {
				targets = append(targets, clientEntry{c, l})
			}
			h.mu.Unlock()

			// O lote inteiro vai de uma vez para cada cliente, sem intercalar com outras escritas.
			for _, target := range targets {
				target.lock.Lock()
				var err error
				for _, message := range batch {
					if err = target.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
						break
					}
				}
				target.lock.Unlock()
				if err != nil {
					h.log.Warnw("Erro ao enviar para cliente", "addr", target.conn.RemoteAddr().String(), "error", err)
					h.drop(target.conn)
				}
			}
		}
	}
}

// Stop encerra o loop do hub e fecha todas as conexões.
func (h *Hub) Stop() {
	select {
	case <-h.done:
		return
	default:
		close(h.done)
	}
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		h.drop(c)
	}
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez
func (h *Hub) WriteSafe(conn *websocket.Conn, messageType int, data []byte) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()

	if !ok {
		return errClientGone
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(messageType, data)
}

// Broadcast enfileira um lote de mensagens para todos os clientes. Cada cliente recebe
// o lote em sequência, sem outras mensagens do hub no meio. Não bloqueia depois de Stop.
func (h *Hub) Broadcast(batch ...[]byte) {
	if len(batch) == 0 {
		return
	}
	select {
	case h.broadcast <- batch:
	case <-h.done:
	}
}

// Send envia uma mensagem svnet para um único cliente.
func (h *Hub) Send(conn *websocket.Conn, t svnet.Envelope_Type, msg svnet.Message) {
	if err := h.WriteSafe(conn, websocket.BinaryMessage, svnet.Wrap(t, msg)); err != nil {
		h.log.Debugw("Erro ao enviar mensagem", "type", t.String(), "error", err)
	}
}

// BroadcastMessage envia uma mensagem svnet para todos os clientes.
func (h *Hub) BroadcastMessage(t svnet.Envelope_Type, msg svnet.Message) {
	h.Broadcast(svnet.Wrap(t, msg))
}
