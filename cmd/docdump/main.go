// Command docdump converts a document the way the pipeline does and prints
// what the analyzer would see. Handy for checking PDF text extraction before
// spending model calls on it.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hyperifyio/gamedoc/internal/docload"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docdump <document>")
		os.Exit(2)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	loader := &docload.Loader{}
	doc, err := loader.Convert(ctx, os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "convert:", err)
		os.Exit(1)
	}
	fmt.Printf("name: %s\n", doc.Name)
	fmt.Printf("title: %s\n", doc.Title)
	fmt.Printf("chars: %d\n", len(doc.Text))
	preview := doc.Text
	if len(preview) > 2000 {
		preview = preview[:2000] + "\n[...]"
	}
	fmt.Println("---")
	fmt.Println(preview)
}
