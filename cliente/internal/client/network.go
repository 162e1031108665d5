package client

import (
	"context"
	"sync"
	"time"

	"SpriteVision/shared/logging"
	"SpriteVision/shared/proto/svnet"
	"SpriteVision/shared/scene"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Target recebe a cena enviada pelo servidor.
type Target interface {
	scene.Scene
	// Clear descarta a cena atual antes de um novo sprite.
	Clear() error
}

// NetworkClient lida com a comunicação com o Servidor SpriteVision.
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	target    Target
	log       logging.Logger
	connected bool
	mu        sync.RWMutex
	writeMu   sync.Mutex

	// inBatch é true entre o primeiro SPRITE_MESH e o SPRITE_DONE. Só a readLoop toca.
	inBatch bool

	MaxRetries int
	RetryDelay time.Duration

	// Callbacks para o App
	OnStatus func(status *svnet.ServerStatus)
	OnDone   func(done *svnet.SpriteDone)
	OnError  func(err error)
	OnClose  func(err error)
}

func NewNetworkClient(url string, target Target, log logging.Logger) *NetworkClient {
	return &NetworkClient{
		url:        url,
		target:     target,
		log:        logging.OrNop(log),
		MaxRetries: 10,
		RetryDelay: 2 * time.Second,
	}
}

// Connect tenta conectar até MaxRetries vezes e inicia a leitura em background.
func (c *NetworkClient) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	var (
		conn *websocket.Conn
		err  error
	)
	for i := 0; i < c.MaxRetries; i++ {
		c.log.Infow("Tentativa de conexão", "attempt", i+1, "max", c.MaxRetries, "url", c.url)
		conn, _, err = dialer.DialContext(ctx, c.url, nil)
		if err == nil {
			break
		}
		c.log.Warnw("Servidor ainda não está pronto. Aguardando...", "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
	if err != nil {
		return errors.Wrapf(err, "falha ao conectar em %s após %d tentativas", c.url, c.MaxRetries)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

func (c *NetworkClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// RequestSprite pede ao servidor outra imagem.
func (c *NetworkClient) RequestSprite(image string, scale float64) error {
	return c.Send(svnet.Envelope_CLIENT_REQUEST_SPRITE, &svnet.SpriteRequest{Image: image, Scale: scale})
}

// Ping envia um PING; a resposta chega como PONG.
func (c *NetworkClient) Ping() error {
	return c.Send(svnet.Envelope_PING, nil)
}

func (c *NetworkClient) Send(msgType svnet.Envelope_Type, msg svnet.Message) error {
	c.mu.RLock()
	conn, ok := c.conn, c.connected
	c.mu.RUnlock()
	if !ok {
		return errors.New("não conectado")
	}

	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.BinaryMessage, svnet.Wrap(msgType, msg))
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		return errors.Wrap(err, "falha ao enviar mensagem")
	}
	return nil
}

// Close encerra a conexão; a readLoop termina em seguida.
func (c *NetworkClient) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.connected = false
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *NetworkClient) readLoop() {
	var readErr error
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.conn.Close()
		if c.OnClose != nil {
			c.OnClose(readErr)
		}
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Infow("Conexão perdida", "error", err)
			readErr = err
			return
		}

		var env svnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			c.log.Warnw("Erro ao desempacotar envelope", "error", err)
			continue
		}
		if err := c.handleMessage(&env); err != nil {
			c.log.Errorw("Erro ao processar mensagem", "type", env.Type.String(), "error", err)
			if c.OnError != nil {
				c.OnError(err)
			}
		}
	}
}

func (c *NetworkClient) handleMessage(env *svnet.Envelope) error {
	ctx := context.Background()
	switch env.Type {
	case svnet.Envelope_SERVER_STATUS:
		var status svnet.ServerStatus
		if err := status.Unmarshal(env.Payload); err != nil {
			return err
		}
		c.log.Infow("Status do servidor", "message", status.Message, "objects", status.Objects)
		if c.OnStatus != nil {
			c.OnStatus(&status)
		}
	case svnet.Envelope_SPRITE_MESH:
		var msg svnet.SpriteMesh
		if err := msg.Unmarshal(env.Payload); err != nil {
			return err
		}
		if !c.inBatch {
			if err := c.target.Clear(); err != nil {
				return err
			}
			c.inBatch = true
		}
		return c.applyMesh(ctx, &msg)
	case svnet.Envelope_SPRITE_DONE:
		var done svnet.SpriteDone
		if err := done.Unmarshal(env.Payload); err != nil {
			return err
		}
		if !c.inBatch {
			// Sprite sem nenhum pixel opaco.
			if err := c.target.Clear(); err != nil {
				return err
			}
		}
		c.inBatch = false
		c.log.Infow("Sprite recebido", "image", done.Image, "objects", done.Objects)
		if c.OnDone != nil {
			c.OnDone(&done)
		}
	case svnet.Envelope_PONG:
		c.log.Debug("PONG")
	}
	return nil
}

// applyMesh registra o objeto na mesma sequência do pipeline: objeto, material, associação.
func (c *NetworkClient) applyMesh(ctx context.Context, msg *svnet.SpriteMesh) error {
	mesh, mat, err := msg.Descriptor()
	if err != nil {
		return err
	}
	if err := c.target.AddObject(ctx, msg.Object, mesh); err != nil {
		return err
	}
	if err := c.target.AddMaterial(ctx, mat); err != nil {
		return err
	}
	return c.target.AssignMaterial(ctx, msg.Object, mat.Name)
}
