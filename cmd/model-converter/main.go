// Command model-converter binarizes the quantized convolution and
// fully-connected layers of a trained model: weight tensors in the params
// file are replaced by sign-packed binary words, and the paired symbol
// file is annotated so inference skips the runtime packing step. Outputs
// are written next to the inputs with a "binarized_" prefix.
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/wzhen1996/BMXNet/internal/binarize"
	"github.com/wzhen1996/BMXNet/internal/convert"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] <model *.params file>\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "  binarizes the weights of the quantized layers of your model,")
	fmt.Fprintln(os.Stderr, "  packs 32 (or 64) signs into one word and saves the result,")
	fmt.Fprintln(os.Stderr, "  along with the annotated symbol file, with the prefix 'binarized_'")
	fmt.Fprintln(os.Stderr, "flags:")
	flag.PrintDefaults()
}

func main() {
	bits := flag.Int("bits", 32, "packed word width in bits (32 or 64)")
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg := convert.Config{
		ParamsPath: flag.Arg(0),
		Bits:       binarize.WordBits(*bits),
	}
	if err := convert.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}
