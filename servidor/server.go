package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"SpriteVision/shared/imagesrc"
	"SpriteVision/shared/logging"
	"SpriteVision/shared/pipeline"
	"SpriteVision/shared/proto/svnet"
	"SpriteVision/shared/scene"
	"SpriteVision/shared/store"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// spriteServer mantém a cena atual em memória e a replica para o SQLite e para os clientes.
type spriteServer struct {
	hub   *Hub
	src   imagesrc.Source
	col   *scene.Collection
	store *store.Store // opcional
	log   logging.Logger

	// importMu serializa importações; a cena é trocada inteira a cada imagem.
	importMu sync.Mutex
	image    string
	scale    float64
}

func newSpriteServer(hub *Hub, src imagesrc.Source, st *store.Store, log logging.Logger) *spriteServer {
	return &spriteServer{
		hub:   hub,
		src:   src,
		col:   scene.NewCollection(),
		store: st,
		log:   logging.OrNop(log),
		scale: pipeline.DefaultScale,
	}
}

// importSprite substitui a cena pelos objetos gerados a partir da imagem.
func (s *spriteServer) importSprite(ctx context.Context, image string, scale float64) (*pipeline.Report, error) {
	s.importMu.Lock()
	defer s.importMu.Unlock()
	return s.importLocked(ctx, image, scale)
}

// importLocked exige importMu.
func (s *spriteServer) importLocked(ctx context.Context, image string, scale float64) (*pipeline.Report, error) {
	runID := uuid.New()
	sink := scene.Scene(s.col)
	if s.store != nil {
		if err := s.store.BeginRun(ctx, runID, image, scale); err != nil {
			return nil, err
		}
		sink = scene.Multi(s.col, s.store)
	}

	s.col.Clear()
	report, err := pipeline.Run(ctx, s.src, sink, pipeline.Options{
		ImageName: image,
		Scale:     pipeline.ScaleOf(scale),
		RunID:     runID,
		Logger:    s.log.Named("Pipeline"),
	})
	if err != nil {
		s.col.Clear()
		s.image = ""
		return nil, err
	}
	s.image = report.Image
	s.scale = scale
	return report, nil
}

// sceneMessages serializa a cena atual: um SPRITE_MESH por objeto seguido de SPRITE_DONE.
// Exige importMu.
func (s *spriteServer) sceneMessages() ([][]byte, error) {
	objs := s.col.Objects()
	out := make([][]byte, 0, len(objs)+1)
	for _, obj := range objs {
		mat, ok := s.col.Material(obj.Material)
		if !ok {
			return nil, errors.Wrapf(scene.ErrUnknownMaterial, "%s sem material", obj.Name)
		}
		out = append(out, svnet.Wrap(svnet.Envelope_SPRITE_MESH, svnet.NewSpriteMesh(obj, mat)))
	}
	out = append(out, svnet.Wrap(svnet.Envelope_SPRITE_DONE, &svnet.SpriteDone{
		Image:   s.image,
		Objects: int32(len(objs)),
	}))
	return out, nil
}

func (s *spriteServer) status(message string) *svnet.ServerStatus {
	return &svnet.ServerStatus{Message: message, Objects: int32(s.col.Len())}
}

// serveWs maneja requisições websocket do peer.
func (s *spriteServer) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("Erro no upgrade do WebSocket", "error", err)
		return
	}

	// Com importMu a cena enviada é a mais recente: os lotes já enfileirados no hub
	// chegam inteiros depois dela e nenhum lote novo é criado até o registro terminar.
	s.importMu.Lock()
	initial := [][]byte{svnet.Wrap(svnet.Envelope_SERVER_STATUS, s.status("Conectado ao Servidor SpriteVision"))}
	msgs, err := s.sceneMessages()
	if err != nil {
		s.log.Errorw("Falha ao serializar cena", "error", err)
	}
	err = s.hub.Register(conn, append(initial, msgs...)...)
	s.importMu.Unlock()
	if err != nil {
		s.log.Debugw("Cliente saiu durante o envio da cena", "error", err)
		return
	}

	go func() {
		defer s.hub.Unregister(conn)

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				s.log.Debugw("Conexão encerrada", "addr", conn.RemoteAddr().String(), "error", err)
				return
			}

			var env svnet.Envelope
			if err := env.Unmarshal(message); err != nil {
				s.log.Warnw("Erro ao desempacotar envelope", "error", err)
				continue
			}
			s.handleClientMessage(r.Context(), conn, &env)
		}
	}()
}

func (s *spriteServer) handleClientMessage(ctx context.Context, conn *websocket.Conn, env *svnet.Envelope) {
	switch env.Type {
	case svnet.Envelope_PING:
		s.hub.Send(conn, svnet.Envelope_PONG, nil)
	case svnet.Envelope_CLIENT_REQUEST_SPRITE:
		var req svnet.SpriteRequest
		if err := req.Unmarshal(env.Payload); err != nil {
			s.log.Warnw("Erro ao ler SpriteRequest", "error", err)
			return
		}
		s.log.Infow("Importação solicitada", "image", req.Image, "scale", req.Scale)
		s.reload(context.WithoutCancel(ctx), req.Image, req.Scale)
	default:
		s.log.Debugw("Mensagem ignorada", "type", env.Type.String())
	}
}

// reload importa a imagem e envia a nova cena para todos os clientes como um único lote.
// Em caso de erro apenas o status é enviado. Escala zero mantém a escala atual
// (no formato wire um campo ausente vale zero).
func (s *spriteServer) reload(ctx context.Context, image string, scale float64) {
	s.importMu.Lock()
	defer s.importMu.Unlock()

	if scale == 0 {
		scale = s.scale
	}
	report, err := s.importLocked(ctx, image, scale)
	if err != nil {
		s.log.Errorw("Falha na importação", "image", image, "error", err)
		s.hub.BroadcastMessage(svnet.Envelope_SERVER_STATUS, s.status(fmt.Sprintf("Erro: %v", err)))
		return
	}

	msgs, err := s.sceneMessages()
	if err != nil {
		s.log.Errorw("Falha ao serializar cena", "error", err)
		return
	}
	status := svnet.Wrap(svnet.Envelope_SERVER_STATUS,
		s.status(fmt.Sprintf("Sprite importado: %s (%d cores)", report.Image, len(report.Groups))))
	s.hub.Broadcast(append([][]byte{status}, msgs...)...)
}
