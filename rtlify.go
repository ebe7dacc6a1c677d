// Package rtlify generates right-to-left localized variants of HTML documents.
//
// Every human-visible string of a document (text nodes plus the placeholder,
// title, alt, aria-label and value attributes) is translated through a remote
// translation service exactly once per run and written back into its original
// tree position with the surrounding whitespace preserved. Document-level
// markup is adjusted for right-to-left rendering.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/ZaguanLabs/rtlify"
//	    "github.com/ZaguanLabs/rtlify/processor"
//	    "github.com/ZaguanLabs/rtlify/provider"
//	    "github.com/ZaguanLabs/rtlify/site"
//	)
//
//	func main() {
//	    // Google endpoint, retried and paced
//	    p := rtlify.NewRetryableProvider(provider.NewGoogleProvider(provider.GoogleConfig{}),
//	        rtlify.DefaultRetryConfig())
//
//	    // One translator per run so duplicate phrases are translated once
//	    t := rtlify.NewTranslator("fa", p)
//
//	    g := site.NewGenerator(t, processor.NewHTMLProcessor(),
//	        processor.NewRTLAdjuster(processor.DefaultRTLOptions()))
//
//	    results, err := g.Run(context.Background(), ".")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(len(results))
//	}
package rtlify
