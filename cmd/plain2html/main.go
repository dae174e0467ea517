// Command plain2html is a mail filter: it reads a raw message, attaches
// an HTML rendering of its plain text body and writes the result back,
// ready for hand-off to sendmail.
package main

import (
	"log"
	"os"

	"github.com/pborman/getopt"

	"github.com/danzipie/go-plain2html/internal/processor"
	"github.com/danzipie/go-plain2html/internal/render"
)

func main() {
	input := getopt.StringLong("input", 'i', "", "read the message from this file instead of stdin")
	output := getopt.StringLong("output", 'o', "", "write the result to this file instead of stdout")
	markdown := getopt.BoolLong("markdown", 'm', "render the body as Markdown")
	allow8bit := getopt.BoolLong("allow-8bit", '8', "pass non-ASCII HTML through as 8bit instead of re-encoding")
	help := getopt.BoolLong("help", 'h', "show usage")
	getopt.Parse()

	if *help {
		getopt.Usage()
		return
	}

	in := os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("Failed to open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	renderer := render.Text()
	if *markdown {
		renderer = render.Markdown()
	}

	p := processor.New(renderer, *allow8bit)
	msg, err := p.TransformReader(in)
	if err != nil {
		log.Fatalf("Failed to transform message: %v", err)
	}
	if err := msg.WriteTo(out); err != nil {
		log.Fatalf("Failed to write message: %v", err)
	}
}
