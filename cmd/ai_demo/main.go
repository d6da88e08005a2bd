// README: Manual demo for the extraction prompt against a live Gemini key.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"trippy/internal/ai"
	"trippy/internal/trip"
)

func main() {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	ctx := context.Background()
	llm, err := ai.NewClient(ctx, ai.StaticKey(apiKey), zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}

	userMessage := "Planning a trip from Mumbai to Goa, Sep 22 to Sep 26, two adults and one kid, about 50000 per head, keep it balanced"
	if len(os.Args) > 1 {
		userMessage = os.Args[1]
	}
	fmt.Printf("User: %s\n", userMessage)

	extractor := trip.NewExtractor(llm, zap.NewNop())
	ext, err := extractor.Extract(ctx, nil, userMessage)
	if err != nil {
		log.Fatalf("Error extracting fields: %v", err)
	}
	if !ext.Parsed {
		fmt.Printf("Model reply was not parsable:\n%s\n", ext.Reply)
		return
	}

	for _, field := range trip.RequiredFields {
		if v, ok := ext.Fields[field]; ok {
			fmt.Printf("%s: %s\n", field, v)
		}
	}

	req := trip.NewRequest()
	req.Merge(ext.Fields)
	fmt.Println(req.MissingMessage())
}
