package model

import (
	"unsafe"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/koru3d/gpu/core"
)

// Object represents a renderable model
type Object interface {

	// SetPosition sets the object's current position in space.
	// Has to be thread-safe
	SetPosition(glm.Mat4)

	// Position gets the object's current position in space.
	// Has to be thread-safe
	Position() glm.Mat4

	// Vertices returns the vertices for pipeline use,
	// so it has to match the vertex layout exactly
	Vertices() []Vertex
}

// Vertex is a model vertex
type Vertex struct {
	Pos   glm.Vec3
	Color glm.Vec4
}

// Uniform defines a model-view-projection object
type Uniform struct {
	Model      glm.Mat4
	View       glm.Mat4
	Projection glm.Mat4
}

// VertexLayout returns the buffer layout matching Vertex
func VertexLayout() core.VertexBufferLayout {
	return core.VertexBufferLayout{
		ArrayStride: uint32(unsafe.Sizeof(Vertex{})),
		Attributes: []core.VertexAttribute{
			{
				Format:         core.VertexFormatFloat32x3,
				Offset:         uint32(unsafe.Offsetof(Vertex{}.Pos)),
				ShaderLocation: 0,
			},
			{
				Format:         core.VertexFormatFloat32x4,
				Offset:         uint32(unsafe.Offsetof(Vertex{}.Color)),
				ShaderLocation: 1,
			},
		},
	}
}

// PositionLayout returns a position-only buffer layout, matching the
// data BoxVertices produces
func PositionLayout() core.VertexBufferLayout {
	return core.VertexBufferLayout{
		ArrayStride: 3 * 4,
		Attributes: []core.VertexAttribute{{
			Format:         core.VertexFormatFloat32x3,
			Offset:         0,
			ShaderLocation: 0,
		}},
	}
}

// Flatten packs vertices into the float32 stream WriteFloat32 expects
func Flatten(vertices []Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*7)
	for _, v := range vertices {
		out = append(out, v.Pos[0], v.Pos[1], v.Pos[2])
		out = append(out, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
	}
	return out
}

// BoxVertices returns 36 position-only vertices of a unit cube centered
// at the origin, wound counter-clockwise
func BoxVertices() []float32 {
	return []float32{
		// -Z face
		-0.5, -0.5, -0.5, 0.5, 0.5, -0.5, 0.5, -0.5, -0.5,
		-0.5, -0.5, -0.5, -0.5, 0.5, -0.5, 0.5, 0.5, -0.5,
		// +Z face
		-0.5, -0.5, 0.5, 0.5, -0.5, 0.5, 0.5, 0.5, 0.5,
		-0.5, -0.5, 0.5, 0.5, 0.5, 0.5, -0.5, 0.5, 0.5,
		// -X face
		-0.5, -0.5, -0.5, -0.5, -0.5, 0.5, -0.5, 0.5, 0.5,
		-0.5, -0.5, -0.5, -0.5, 0.5, 0.5, -0.5, 0.5, -0.5,
		// +X face
		0.5, -0.5, -0.5, 0.5, 0.5, 0.5, 0.5, -0.5, 0.5,
		0.5, -0.5, -0.5, 0.5, 0.5, -0.5, 0.5, 0.5, 0.5,
		// -Y face
		-0.5, -0.5, -0.5, 0.5, -0.5, -0.5, 0.5, -0.5, 0.5,
		-0.5, -0.5, -0.5, 0.5, -0.5, 0.5, -0.5, -0.5, 0.5,
		// +Y face
		-0.5, 0.5, -0.5, 0.5, 0.5, 0.5, 0.5, 0.5, -0.5,
		-0.5, 0.5, -0.5, -0.5, 0.5, 0.5, 0.5, 0.5, 0.5,
	}
}
