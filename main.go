//go:build !(js && wasm)

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/bsoldiers/vtview/api"
	"github.com/bsoldiers/vtview/utils"
	"github.com/bsoldiers/vtview/vtf"
	"github.com/bsoldiers/vtview/vtflib"
)

func usage() {
	fmt.Println("Usage: vtview <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  info input.vtf                          (print header and resource dictionary)")
	fmt.Println("  sniff input                             (print vtf or generic)")
	fmt.Println("  vtf2png input output.png                (decode a texture to .png)")
	fmt.Println("  vtf2glb input output.glb                (export a textured quad as .glb)")
	fmt.Println("  batch2png output_dir input1 [input2 ...]  (decode many textures to .png)")
	fmt.Println("  thumb input output.png size             (write a preview no larger than size)")
	fmt.Println("  open [input] output.png                 (pick the input with a file dialog when omitted)")
	fmt.Println("  gennoise <percentage> <amount> <output_dir>                    (write N random 64x64 .vtf textures)")
	fmt.Println("  gennoise <percentageMin> <percentageMax> <amount> <output_dir> (per-file random fill in [min,max])")
	fmt.Println("Environment:")
	fmt.Println("  VTVIEW_VERBOSE=1                        (log header diagnostics to stderr)")
	fmt.Println("  VTVIEW_CACHE=none|zlib|zstd|lz4         (decoded image cache codec, default zstd)")
}

var cache *vtf.Cache

// exit closes the decoder cache and terminates the process.
func exit(code int) {
	if cache != nil {
		cache.Close()
	}
	os.Exit(code)
}

func fail(err error) {
	fmt.Println("Error:", err)
	exit(1)
}

func setupDecoder() (*vtf.Cache, error) {
	var opts []vtf.Option
	if v := os.Getenv("VTVIEW_VERBOSE"); v != "" && v != "0" {
		opts = append(opts, vtf.WithLogger(log.New(os.Stderr, "vtview: ", 0)))
	}
	name := os.Getenv("VTVIEW_CACHE")
	if name == "" {
		name = "zstd"
	}
	codec, err := vtf.ParseCacheCodec(name)
	if err != nil {
		return nil, err
	}
	c, err := vtf.NewCache(codec, 64)
	if err != nil {
		return nil, err
	}
	opts = append(opts, vtf.WithCache(c))
	api.SetDecoder(vtf.NewDecoder(vtflib.Default(), opts...))
	return c, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	var err error
	cache, err = setupDecoder()
	if err != nil {
		fail(err)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "info":
		if len(args) != 1 {
			usage()
			exit(1)
		}
		err = utils.RunInfo(args[0], os.Stdout)
	case "sniff":
		if len(args) != 1 {
			usage()
			exit(1)
		}
		err = utils.RunSniff(args[0], os.Stdout)
	case "vtf2png":
		if len(args) != 2 {
			usage()
			exit(1)
		}
		err = utils.RunVTF2PNG(args[0], args[1])
	case "vtf2glb":
		if len(args) != 2 {
			usage()
			exit(1)
		}
		err = utils.RunVTF2GLB(args[0], args[1])
	case "batch2png":
		if len(args) < 2 {
			usage()
			exit(1)
		}
		err = utils.RunBatchVTF2PNG(args[0], args[1:])
	case "thumb":
		if len(args) != 3 {
			usage()
			exit(1)
		}
		err = utils.RunThumb(args[0], args[1], args[2])
	case "open":
		switch len(args) {
		case 1:
			err = utils.RunOpen("", args[0])
		case 2:
			err = utils.RunOpen(args[0], args[1])
		default:
			usage()
			exit(1)
		}
	case "gennoise":
		var minP, maxP float64
		var amt int
		switch len(args) {
		case 3:
			if _, err := fmt.Sscan(args[0], &minP); err != nil {
				fail(err)
			}
			maxP = minP
			args = args[1:]
		case 4:
			if _, err := fmt.Sscan(args[0], &minP); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(args[1], &maxP); err != nil {
				fail(err)
			}
			args = args[2:]
		default:
			usage()
			exit(1)
		}
		if _, err := fmt.Sscan(args[0], &amt); err != nil {
			fail(err)
		}
		err = utils.RunGenerateNoiseVTFRange(minP, maxP, amt, args[1])
	default:
		usage()
		exit(1)
	}
	if err != nil {
		fail(err)
	}
	exit(0)
}
