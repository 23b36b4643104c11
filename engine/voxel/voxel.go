// Package voxel holds chunk data, the populators that fill chunks, the texture layer table and
// the mesher that turns chunks into packed-attribute vertex buffers.
package voxel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownVoxel is returned when parsing a voxel name fails.
	ErrUnknownVoxel = errors.New("voxel: unknown voxel")
	// ErrUnknownFace is returned when parsing a face name fails.
	ErrUnknownFace = errors.New("voxel: unknown face")
)

// Voxel is the content of one cell of a chunk.
type Voxel uint8

const (
	// Air is the empty voxel; it is never meshed.
	Air Voxel = iota
	Grass
	Dirt
	Stone
)

var voxelNames = map[Voxel]string{
	Air:   "air",
	Grass: "grass",
	Dirt:  "dirt",
	Stone: "stone",
}

func (v Voxel) String() string {
	if name, ok := voxelNames[v]; ok {
		return name
	}
	return fmt.Sprintf("voxel(%d)", uint8(v))
}

// ParseVoxel parses a voxel name, case-insensitively.
func ParseVoxel(name string) (Voxel, error) {
	for v, n := range voxelNames {
		if strings.EqualFold(n, name) {
			return v, nil
		}
	}
	return Air, fmt.Errorf("%w: %q", ErrUnknownVoxel, name)
}

// Face is the texture orientation of a voxel face.
type Face uint8

const (
	// FaceUp faces positive y.
	FaceUp Face = iota
	// FaceDown faces negative y.
	FaceDown
	// FaceSide is any face perpendicular to the y axis.
	FaceSide
)

var faceNames = map[Face]string{
	FaceUp:   "up",
	FaceDown: "down",
	FaceSide: "side",
}

func (f Face) String() string {
	if name, ok := faceNames[f]; ok {
		return name
	}
	return fmt.Sprintf("face(%d)", uint8(f))
}

// ParseFace parses a face name, case-insensitively.
func ParseFace(name string) (Face, error) {
	for f, n := range faceNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return FaceUp, fmt.Errorf("%w: %q", ErrUnknownFace, name)
}
