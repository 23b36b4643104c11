package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/attribute"
	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/Carmen-Shannon/oxy-voxel/engine/shading"
	"github.com/Carmen-Shannon/oxy-voxel/engine/voxel"
	"github.com/Carmen-Shannon/oxy-voxel/engine/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/image/tiff"
)

// renderOptions are the flags of the render command.
type renderOptions struct {
	variant     string
	out         string
	width       int
	height      int
	seed        int64
	radius      int
	textureSize int
	linear      bool
}

func newRenderCommand() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Rasterise a noise world on the CPU and write the image",
		Long: "Meshes the chunks around the origin and draws them with the CPU reference of the chosen\n" +
			"program. The output format follows the file extension: .png or .tif/.tiff.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, stats, err := renderWorld(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := writeImage(opts.out, img); err != nil {
				return err
			}
			common.Logger().Info("render written",
				"out", opts.out,
				"triangles", stats.Triangles,
				"rejected", stats.Rejected,
				"fragments", stats.Fragments,
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.variant, "variant", program.VariantVoxel.String(), "program: mesh, voxel, voxel_bands or triangle")
	f.StringVarP(&opts.out, "out", "o", "voxel.png", "output image path")
	f.IntVar(&opts.width, "width", 640, "image width in pixels")
	f.IntVar(&opts.height, "height", 360, "image height in pixels")
	f.Int64Var(&opts.seed, "seed", 1, "terrain seed")
	f.IntVar(&opts.radius, "radius", 1, "chunk radius meshed around the origin")
	f.IntVar(&opts.textureSize, "texture-size", voxel.DefaultTextureSize, "texture layer edge in texels")
	f.BoolVar(&opts.linear, "linear", false, "sample layers with linear filtering")
	return cmd
}

// renderWorld draws the configured program into a new image. Chunk meshing progress is written
// to progress as a bar; pass io.Discard to silence it.
//
// Parameters:
//   - opts: the render options
//   - progress: the progress bar destination
//
// Returns:
//   - *image.RGBA: the rendered image
//   - shading.Stats: the summed draw statistics
//   - error: error if an option is invalid or a draw fails
func renderWorld(opts renderOptions, progress io.Writer) (*image.RGBA, shading.Stats, error) {
	var total shading.Stats

	v, err := program.ParseVariant(opts.variant)
	if err != nil {
		return nil, total, err
	}
	if opts.width <= 0 || opts.height <= 0 {
		return nil, total, fmt.Errorf("invalid image size %dx%d", opts.width, opts.height)
	}
	if opts.radius < 0 {
		return nil, total, fmt.Errorf("invalid radius %d", opts.radius)
	}

	r := shading.NewRasterizer(opts.width, opts.height)
	defer r.Close()
	if v == program.VariantTriangle {
		return r.Image(), r.Draw(shading.DrawState{Variant: v}, 3, nil), nil
	}

	layers := voxel.DefaultTextureLayers()
	staging, err := layers.StagingData(opts.textureSize)
	if err != nil {
		return nil, total, err
	}
	sampler := shading.Sampler{}
	if opts.linear {
		sampler.Filter = shading.FilterLinear
	}

	pop, err := voxel.NewNoisePopulator(voxel.DefaultNoiseSettings(opts.seed))
	if err != nil {
		return nil, total, err
	}

	var bar *progressbar.ProgressBar
	mgr := world.NewManager(pop, voxel.NewMesher(layers),
		world.WithLoadRadius(opts.radius),
		world.WithProgress(func(done, n int) {
			if bar == nil {
				bar = progressbar.NewOptions(n,
					progressbar.OptionSetWriter(progress),
					progressbar.OptionSetDescription("meshing chunks"),
					progressbar.OptionShowCount(),
				)
			}
			_ = bar.Add(done)
		}),
	)
	defer mgr.Close()

	centre := voxel.ChunkWidth / 2
	target := mgl32.Vec3{float32(centre), float32(pop.HeightAt(centre, centre)), float32(centre)}
	if _, err := mgr.Update(target); err != nil {
		return nil, total, err
	}
	if bar != nil {
		_ = bar.Close()
	}

	cam := camera.NewCamera(
		camera.WithAspect(float32(opts.width)/float32(opts.height)),
		camera.WithController(camera.NewCameraController(
			camera.WithTarget(target[0], target[1], target[2]),
			camera.WithRadius(float32(voxel.ChunkWidth*(opts.radius+1))),
			camera.WithElevation(0.6),
		)),
	)

	state := shading.DrawState{
		Variant:  v,
		ViewProj: cam.ViewProjectionMatrix(),
		Texture:  shading.NewImageArray(staging),
		Sampler:  sampler,
	}
	for _, mesh := range mgr.Meshes() {
		if mesh.Faces() == 0 {
			continue
		}
		stats, err := r.DrawIndexed(state, meshInputs(v.Layout(), mesh), mesh.Indices)
		if err != nil {
			return nil, total, fmt.Errorf("draw chunk %s: %w", mesh.Coord, err)
		}
		total.Triangles += stats.Triangles
		total.Rejected += stats.Rejected
		total.Fragments += stats.Fragments
	}
	return r.Image(), total, nil
}

// meshInputs converts a chunk mesh into the vertex records the program reads.
func meshInputs(layout attribute.Layout, mesh *voxel.Mesh) []shading.VertexInput {
	if layout == attribute.LayoutIndexed {
		return shading.IndexedInputs(mesh.IndexedVertices())
	}
	return shading.PackedInputs(mesh.Vertices)
}

// writeImage encodes img to path, choosing the format by extension.
func writeImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	encode := func(w io.Writer) error { return png.Encode(w, img) }
	switch ext {
	case ".png", "":
	case ".tif", ".tiff":
		encode = func(w io.Writer) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return fmt.Errorf("unsupported image format %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
