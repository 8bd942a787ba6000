// Command imageanneal exposes one subcommand per Dispatcher operation
// (create-permutation, permute, swap, create-displacement-goal,
// validate-permutation) plus assemble-shaders, the collaborator that
// stages an externally-authored WGSL kernel set into the directory
// layout internal/shadertext.LoadSet reads (spec.md §6's CLI surface).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/imageanneal"
	"github.com/gogpu/imageanneal/internal/shadertext"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: imageanneal <command> [flags]")
		os.Exit(1)
	}
	var err error
	switch os.Args[1] {
	case "create-permutation":
		err = runCreatePermutation(os.Args[2:])
	case "permute":
		err = runPermute(os.Args[2:])
	case "swap":
		err = runSwap(os.Args[2:])
	case "create-displacement-goal":
		err = runCreateDisplacementGoal(os.Args[2:])
	case "validate-permutation":
		err = runValidatePermutation(os.Args[2:])
	case "assemble-shaders":
		err = runAssembleShaders(os.Args[2:])
	default:
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "imageanneal: %v\n", err)
		os.Exit(1)
	}
}

// dimensionFlags are the --width/--height pair every GPU-backed
// subcommand takes to size its Dispatcher (spec.md's "All GPU resources
// are created sized to the dispatcher's fixed ImageDimensions").
type dimensionFlags struct {
	width, height int
}

func addDimensionFlags(fs *flag.FlagSet) *dimensionFlags {
	d := &dimensionFlags{}
	fs.IntVar(&d.width, "width", 0, "image width in pixels")
	fs.IntVar(&d.height, "height", 0, "image height in pixels")
	return d
}

func (d *dimensionFlags) dims() (imageanneal.ImageDimensions, error) {
	return imageanneal.NewImageDimensions(d.width, d.height)
}

// openDispatcher loads the shader set from shadersDir and constructs a
// Dispatcher sized to dims, the setup every subcommand shares before
// requesting its one operation.
func openDispatcher(dims imageanneal.ImageDimensions, imageBytesPerPixel int, shadersDir string) (*imageanneal.Dispatcher, error) {
	shaders, err := shadertext.LoadSet(shadersDir, readFileString)
	if err != nil {
		return nil, err
	}
	return imageanneal.NewDispatcher(dims, imageBytesPerPixel, shaders)
}

func readFileString(name string) (string, error) {
	body, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// runToCompletion drives an Algorithm's Step loop until it reaches a
// terminal OutputStatus or an error, mirroring the cooperative
// step-machine contract of spec.md §4.7. The CLI has no partial-output
// consumer of its own, so every intermediate status is simply ignored.
func runToCompletion(a imageanneal.Algorithm) (imageanneal.OutputStatus, error) {
	for {
		status, err := a.Step()
		if err != nil {
			return status, err
		}
		if status.Terminal() {
			return status, nil
		}
	}
}

func writeVectorFieldPNG(path string, v imageanneal.VectorField) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return v.EncodePNG(f)
}

func readVectorFieldPNG(path string) (imageanneal.VectorField, error) {
	f, err := os.Open(path)
	if err != nil {
		return imageanneal.VectorField{}, err
	}
	defer f.Close()
	return imageanneal.DecodeVectorFieldPNG(f)
}

func readLosslessImagePNG(path string) (imageanneal.LosslessImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return imageanneal.LosslessImage{}, err
	}
	defer f.Close()
	return imageanneal.DecodeLosslessImagePNG(f)
}

func writeLosslessImagePNG(path string, img imageanneal.LosslessImage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return img.EncodePNG(f)
}

func runCreatePermutation(args []string) error {
	fs := flag.NewFlagSet("create-permutation", flag.ExitOnError)
	d := addDimensionFlags(fs)
	shadersDir := fs.String("shaders", "", "directory of assembled WGSL kernels")
	output := fs.String("output", "", "output permutation PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dims, err := d.dims()
	if err != nil {
		return err
	}
	dispatcher, err := openDispatcher(dims, 4, *shadersDir)
	if err != nil {
		return err
	}
	defer dispatcher.Release()

	a := dispatcher.CreatePermutation()
	if _, err := runToCompletion(a); err != nil {
		return err
	}
	candidate := a.(*imageanneal.CreatePermutationAlgorithm).FullOutput()
	a.ReturnToDispatcher()
	return writeVectorFieldPNG(*output, candidate.Field)
}

func runPermute(args []string) error {
	fs := flag.NewFlagSet("permute", flag.ExitOnError)
	d := addDimensionFlags(fs)
	shadersDir := fs.String("shaders", "", "directory of assembled WGSL kernels")
	permutationPath := fs.String("permutation", "", "permutation PNG path")
	imagePath := fs.String("image", "", "input image PNG path")
	output := fs.String("output", "", "output image PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dims, err := d.dims()
	if err != nil {
		return err
	}
	image, err := readLosslessImagePNG(*imagePath)
	if err != nil {
		return err
	}
	dispatcher, err := openDispatcher(dims, bytesPerPixel(image.Format), *shadersDir)
	if err != nil {
		return err
	}
	defer dispatcher.Release()

	field, err := readVectorFieldPNG(*permutationPath)
	if err != nil {
		return err
	}
	candidate := imageanneal.CandidatePermutation{Field: field}

	a := dispatcher.Permute(&candidate, image)
	if _, err := runToCompletion(a); err != nil {
		return err
	}
	result := a.(*imageanneal.PermuteAlgorithm).FullOutput()
	a.ReturnToDispatcher()
	return writeLosslessImagePNG(*output, result)
}

func runSwap(args []string) error {
	fs := flag.NewFlagSet("swap", flag.ExitOnError)
	d := addDimensionFlags(fs)
	shadersDir := fs.String("shaders", "", "directory of assembled WGSL kernels")
	permutationPath := fs.String("permutation", "", "permutation PNG path")
	goalPath := fs.String("goal", "", "displacement goal PNG path")
	pass := fs.Int("pass", 0, "swap pass: 0=Horizontal 1=Vertical 2=OffsetHorizontal 3=OffsetVertical")
	threshold := fs.Float64("threshold", 0, "acceptance threshold")
	output := fs.String("output", "", "output permutation PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dims, err := d.dims()
	if err != nil {
		return err
	}
	dispatcher, err := openDispatcher(dims, 4, *shadersDir)
	if err != nil {
		return err
	}
	defer dispatcher.Release()

	permField, err := readVectorFieldPNG(*permutationPath)
	if err != nil {
		return err
	}
	candidate := imageanneal.CandidatePermutation{Field: permField}

	goalField, err := readVectorFieldPNG(*goalPath)
	if err != nil {
		return err
	}
	goal := imageanneal.DisplacementGoal{Field: goalField}

	a := dispatcher.Swap(&candidate, goal, imageanneal.SwapPass(*pass), *threshold)
	if _, err := runToCompletion(a); err != nil {
		return err
	}
	swapAlgo := a.(*imageanneal.SwapAlgorithm)
	result := swapAlgo.FullOutput()
	counts := swapAlgo.Counts()
	a.ReturnToDispatcher()

	if err := writeVectorFieldPNG(*output, result.Field); err != nil {
		return err
	}
	fmt.Printf("accepted swaps by pass: %v\n", counts)
	return nil
}

func runCreateDisplacementGoal(args []string) error {
	fs := flag.NewFlagSet("create-displacement-goal", flag.ExitOnError)
	d := addDimensionFlags(fs)
	shadersDir := fs.String("shaders", "", "directory of assembled WGSL kernels")
	permutationPath := fs.String("permutation", "", "optional permutation PNG path")
	goalPath := fs.String("goal", "", "optional displacement goal PNG path")
	imagePath := fs.String("image", "", "optional input image PNG path")
	shaderPath := fs.String("shader", "", "optional caller-assembled WGSL override for this kernel")
	entryPoint := fs.String("entry-point", "main", "entry point symbol in -shader")
	output := fs.String("output", "", "output displacement goal PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dims, err := d.dims()
	if err != nil {
		return err
	}
	dispatcher, err := openDispatcher(dims, 4, *shadersDir)
	if err != nil {
		return err
	}
	defer dispatcher.Release()

	var candidatePtr *imageanneal.CandidatePermutation
	if *permutationPath != "" {
		field, err := readVectorFieldPNG(*permutationPath)
		if err != nil {
			return err
		}
		candidatePtr = &imageanneal.CandidatePermutation{Field: field}
	}

	var goalPtr *imageanneal.DisplacementGoal
	if *goalPath != "" {
		field, err := readVectorFieldPNG(*goalPath)
		if err != nil {
			return err
		}
		goalPtr = &imageanneal.DisplacementGoal{Field: field}
	}

	var imagePtr *imageanneal.LosslessImage
	if *imagePath != "" {
		img, err := readLosslessImagePNG(*imagePath)
		if err != nil {
			return err
		}
		imagePtr = &img
	}

	var cfg shadertext.Config
	if *shaderPath != "" {
		body, err := readFileString(*shaderPath)
		if err != nil {
			return err
		}
		cfg = shadertext.Config{Body: body, EntryPoint: *entryPoint}
	}

	a := dispatcher.CreateDisplacementGoal(candidatePtr, goalPtr, imagePtr, cfg)
	if _, err := runToCompletion(a); err != nil {
		return err
	}
	result := a.(*imageanneal.CreateDisplacementGoalAlgorithm).FullOutput()
	a.ReturnToDispatcher()
	return writeVectorFieldPNG(*output, result.Field)
}

func runValidatePermutation(args []string) error {
	fs := flag.NewFlagSet("validate-permutation", flag.ExitOnError)
	d := addDimensionFlags(fs)
	shadersDir := fs.String("shaders", "", "directory of assembled WGSL kernels")
	permutationPath := fs.String("permutation", "", "permutation PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dims, err := d.dims()
	if err != nil {
		return err
	}
	dispatcher, err := openDispatcher(dims, 4, *shadersDir)
	if err != nil {
		return err
	}
	defer dispatcher.Release()

	field, err := readVectorFieldPNG(*permutationPath)
	if err != nil {
		return err
	}
	candidate := imageanneal.CandidatePermutation{Field: field}

	a := dispatcher.ValidatePermutation(candidate)
	if _, err := runToCompletion(a); err != nil {
		return err
	}
	a.ReturnToDispatcher()
	fmt.Println("permutation is valid")
	return nil
}

// runAssembleShaders stages a directory of externally-authored ".wgsl"
// kernel files into the fixed five-file layout shadertext.LoadSet
// expects, validating each one first. It does not author or modify any
// shader text; source is assumed already assembled by whatever upstream
// build step produced it.
func runAssembleShaders(args []string) error {
	fs := flag.NewFlagSet("assemble-shaders", flag.ExitOnError)
	source := fs.String("source", "", "directory containing the five kernel .wgsl files")
	dest := fs.String("dest", "", "directory to stage validated kernels into")
	if err := fs.Parse(args); err != nil {
		return err
	}

	names := []string{
		"create_permutation.wgsl",
		"permute.wgsl",
		"swap.wgsl",
		"count_swap.wgsl",
		"create_displacement_goal.wgsl",
	}
	if err := os.MkdirAll(*dest, 0o755); err != nil {
		return err
	}
	for _, name := range names {
		body, err := readFileString(filepath.Join(*source, name))
		if err != nil {
			return err
		}
		if err := shadertext.Validate(body); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(*dest, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	fmt.Printf("assembled %d shader kernels into %s\n", len(names), *dest)
	return nil
}

// bytesPerPixel maps an ImageFormat to the GPU-resident per-pixel byte
// size the Operation Manager's allocator needs, mirroring
// ImageFormat.channelsPerPixel/bytesPerChannelUnit without exporting
// those internals.
func bytesPerPixel(format imageanneal.ImageFormat) int {
	switch format {
	case imageanneal.FormatRgba16:
		return 8
	default:
		return 4
	}
}
