package svnet

import (
	"SpriteVision/shared/meshing"
	"SpriteVision/shared/scene"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Envelope_Type identifica o conteúdo do Payload.
type Envelope_Type int32

const (
	Envelope_UNKNOWN Envelope_Type = iota
	Envelope_PING
	Envelope_PONG
	Envelope_SERVER_STATUS
	Envelope_SPRITE_MESH
	Envelope_SPRITE_DONE
	Envelope_CLIENT_REQUEST_SPRITE
)

var envelopeTypeNames = map[Envelope_Type]string{
	Envelope_UNKNOWN:               "UNKNOWN",
	Envelope_PING:                  "PING",
	Envelope_PONG:                  "PONG",
	Envelope_SERVER_STATUS:         "SERVER_STATUS",
	Envelope_SPRITE_MESH:           "SPRITE_MESH",
	Envelope_SPRITE_DONE:           "SPRITE_DONE",
	Envelope_CLIENT_REQUEST_SPRITE: "CLIENT_REQUEST_SPRITE",
}

func (t Envelope_Type) String() string {
	if s, ok := envelopeTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Message é implementado por todas as mensagens do protocolo.
type Message interface {
	Marshal() []byte
	Unmarshal(data []byte) error
}

// Envelope embrulha toda mensagem trafegada no WebSocket.
type Envelope struct {
	Type    Envelope_Type
	Payload []byte
}

func (e *Envelope) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(e.Type))
	b = appendBytes(b, 2, e.Payload)
	return b
}

func (e *Envelope) Unmarshal(data []byte) error {
	*e = Envelope{}
	return walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			e.Type = Envelope_Type(v)
			return n, err
		case 2:
			v, n, err := consumeBytes(typ, b)
			e.Payload = v
			return n, err
		}
		return 0, nil
	})
}

// Wrap serializa msg dentro de um Envelope do tipo t. msg pode ser nil.
func Wrap(t Envelope_Type, msg Message) []byte {
	env := Envelope{Type: t}
	if msg != nil {
		env.Payload = msg.Marshal()
	}
	return env.Marshal()
}

// ServerStatus é enviado na conexão e em mudanças de estado do servidor.
type ServerStatus struct {
	Message string
	Objects int32
}

func (m *ServerStatus) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Message)
	b = appendVarint(b, 2, uint64(m.Objects))
	return b
}

func (m *ServerStatus) Unmarshal(data []byte) error {
	*m = ServerStatus{}
	return walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Message = v
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Objects = int32(v)
			return n, err
		}
		return 0, nil
	})
}

// SpriteRequest pede ao servidor que importe outra imagem.
type SpriteRequest struct {
	Image string
	Scale float64
}

func (m *SpriteRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Image)
	b = appendDouble(b, 2, m.Scale)
	return b
}

func (m *SpriteRequest) Unmarshal(data []byte) error {
	*m = SpriteRequest{}
	return walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Image = v
			return n, err
		case 2:
			v, n, err := consumeDouble(typ, b)
			m.Scale = v
			return n, err
		}
		return 0, nil
	})
}

// SpriteDone fecha o envio de uma imagem.
type SpriteDone struct {
	Image   string
	Objects int32
}

func (m *SpriteDone) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Image)
	b = appendVarint(b, 2, uint64(m.Objects))
	return b
}

func (m *SpriteDone) Unmarshal(data []byte) error {
	*m = SpriteDone{}
	return walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Image = v
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Objects = int32(v)
			return n, err
		}
		return 0, nil
	})
}

// SpriteMesh carrega um objeto completo: malha, nome do material e cor.
// Vertices é plano (x,y,z,...) e Faces tem 4 índices por quad.
type SpriteMesh struct {
	Object   string
	Mesh     string
	Material string
	Color    []float64
	Vertices []float64
	Faces    []uint32
}

// NewSpriteMesh monta a mensagem a partir de um objeto da cena e seu material.
func NewSpriteMesh(obj scene.Object, mat scene.MaterialDescriptor) *SpriteMesh {
	m := &SpriteMesh{
		Object:   obj.Name,
		Mesh:     obj.Mesh.Name,
		Material: mat.Name,
		Color:    mat.BaseColor[:],
		Vertices: make([]float64, 0, len(obj.Mesh.Vertices)*3),
		Faces:    make([]uint32, 0, len(obj.Mesh.Faces)*4),
	}
	for _, v := range obj.Mesh.Vertices {
		m.Vertices = append(m.Vertices, v[0], v[1], v[2])
	}
	for _, f := range obj.Mesh.Faces {
		m.Faces = append(m.Faces, f[:]...)
	}
	return m
}

// Descriptor reconstrói a malha e o material.
func (m *SpriteMesh) Descriptor() (meshing.MeshDescriptor, scene.MaterialDescriptor, error) {
	if len(m.Vertices)%3 != 0 || len(m.Faces)%4 != 0 {
		return meshing.MeshDescriptor{}, scene.MaterialDescriptor{}, errors.Wrapf(meshing.ErrInvalidMesh,
			"%s: %d coordenadas, %d índices", m.Object, len(m.Vertices), len(m.Faces))
	}
	if len(m.Color) != 4 {
		return meshing.MeshDescriptor{}, scene.MaterialDescriptor{}, errors.Errorf("%s: cor com %d canais", m.Object, len(m.Color))
	}

	mesh := meshing.MeshDescriptor{
		Name:     m.Mesh,
		Vertices: make([]mgl64.Vec3, 0, len(m.Vertices)/3),
		Faces:    make([]meshing.Face, 0, len(m.Faces)/4),
	}
	for i := 0; i < len(m.Vertices); i += 3 {
		mesh.Vertices = append(mesh.Vertices, mgl64.Vec3{m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2]})
	}
	for i := 0; i < len(m.Faces); i += 4 {
		mesh.Faces = append(mesh.Faces, meshing.Face{m.Faces[i], m.Faces[i+1], m.Faces[i+2], m.Faces[i+3]})
	}
	mat := scene.MaterialDescriptor{Name: m.Material}
	copy(mat.BaseColor[:], m.Color)
	return mesh, mat, mesh.Validate()
}

func (m *SpriteMesh) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Object)
	b = appendString(b, 2, m.Mesh)
	b = appendString(b, 3, m.Material)
	b = appendPackedDoubles(b, 4, m.Color)
	b = appendPackedDoubles(b, 5, m.Vertices)
	b = appendPackedUint32(b, 6, m.Faces)
	return b
}

func (m *SpriteMesh) Unmarshal(data []byte) error {
	*m = SpriteMesh{}
	return walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var (
			n   int
			err error
		)
		switch num {
		case 1:
			m.Object, n, err = consumeString(typ, b)
		case 2:
			m.Mesh, n, err = consumeString(typ, b)
		case 3:
			m.Material, n, err = consumeString(typ, b)
		case 4:
			m.Color, n, err = consumePackedDoubles(m.Color, typ, b)
		case 5:
			m.Vertices, n, err = consumePackedDoubles(m.Vertices, typ, b)
		case 6:
			m.Faces, n, err = consumePackedUint32(m.Faces, typ, b)
		}
		return n, err
	})
}
