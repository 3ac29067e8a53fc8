package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/clipdex"
	logpkg "github.com/kailas-cloud/clipdex/internal/logger"
)

type command func(ctx context.Context, c *clipdex.Client, args []string, out io.Writer) error

var commands = map[string]command{
	"query":     runQuery,
	"similar":   runSimilar,
	"clips":     runClips,
	"submit":    runSubmit,
	"image":     runImage,
	"bookmarks": runBookmarks,
}

func runQuery(ctx context.Context, c *clipdex.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	q := fs.String("q", "", "query text, comma-separated labels")
	sub := fs.String("sub", "", "earlier results to search within, as JSON, e.g. [{\"id\":\"1\"}]")
	embedding := fs.Bool("embedding", false, "use sentence embedding search")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	var subQuery clipdex.Results
	if *sub != "" {
		if err := json.Unmarshal([]byte(*sub), &subQuery); err != nil {
			return fmt.Errorf("parse -sub: %w", err)
		}
	}

	res, err := c.Query(ctx, clipdex.TextQuery{Query: *q, SubQuery: subQuery, Embedding: *embedding})
	if err != nil {
		return err //nolint:wrapcheck // already prefixed by the client
	}
	return printJSON(out, res)
}

func runSimilar(ctx context.Context, c *clipdex.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("similar", flag.ContinueOnError)
	id := fs.String("id", "", "reference item id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *id == "" {
		return fmt.Errorf("-id is required: %w", errUsage)
	}

	res, err := c.Similar(ctx, clipdex.Item{"id": *id})
	if err != nil {
		return err //nolint:wrapcheck // already prefixed by the client
	}
	return printJSON(out, res)
}

func runClips(ctx context.Context, c *clipdex.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("clips", flag.ContinueOnError)
	movie := fs.String("movie", "", "movie name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *movie == "" {
		return fmt.Errorf("-movie is required: %w", errUsage)
	}

	res, err := c.MovieClips(ctx, clipdex.Item{"location": map[string]any{"movie": *movie}})
	if err != nil {
		return err //nolint:wrapcheck // already prefixed by the client
	}
	return printJSON(out, res)
}

func runSubmit(ctx context.Context, c *clipdex.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	movie := fs.String("movie", "", "movie name")
	frame := fs.Int("frame", -1, "frame position")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *frame < 0 {
		return fmt.Errorf("-frame is required: %w", errUsage)
	}

	if err := c.Submit(ctx, *movie, *frame); err != nil {
		return err //nolint:wrapcheck // already prefixed by the client
	}
	logpkg.FromContext(ctx).Info("answer submitted")
	_, err := fmt.Fprintf(out, "submitted %s/%d\n", *movie, *frame)
	return err //nolint:wrapcheck // stdout write
}

func runImage(ctx context.Context, c *clipdex.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("image", flag.ContinueOnError)
	file := fs.String("file", "", "png or jpeg file")
	sub := fs.String("sub", "null", "sub-query as JSON, e.g. [{\"id\":\"1\"}]")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *file == "" {
		return fmt.Errorf("-file is required: %w", errUsage)
	}

	img, err := loadImage(*file)
	if err != nil {
		return err
	}
	var subQuery any
	if err := json.Unmarshal([]byte(*sub), &subQuery); err != nil {
		return fmt.Errorf("parse -sub: %w", err)
	}

	res, err := c.QueryImage(ctx, clipdex.ImageQuery{SubQuery: subQuery, Image: img})
	if err != nil {
		return err //nolint:wrapcheck // already prefixed by the client
	}
	return printJSON(out, res)
}

func runBookmarks(ctx context.Context, c *clipdex.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("bookmarks", flag.ContinueOnError)
	set := fs.String("set", "", "comma-separated ids to bookmark (replaces the current set)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if isFlagSet(fs, "set") {
		if err := c.UpdateBookmarks(ctx, splitIDs(*set)); err != nil {
			return err //nolint:wrapcheck // already prefixed by the client
		}
	}

	res, err := c.Bookmarks(ctx)
	if err != nil {
		return err //nolint:wrapcheck // already prefixed by the client
	}
	return printJSON(out, res)
}

func runCard(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("card", flag.ContinueOnError)
	var card clipdex.Card
	fs.StringVar(&card.Kind, "kind", "movie", "result kind")
	fs.StringVar(&card.ContentID, "cid", "", "content id")
	fs.StringVar(&card.Thumbnail, "thumb", "", "thumbnail URL")
	fs.StringVar(&card.Location, "location", "", "source location")
	fs.StringVar(&card.Caption, "caption", "", "tooltip caption")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if card.ContentID == "" {
		return fmt.Errorf("-cid is required: %w", errUsage)
	}

	html, err := clipdex.RenderCard(card)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	_, err = fmt.Fprintln(out, html)
	return err //nolint:wrapcheck // stdout write
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

func splitIDs(s string) []string {
	ids := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
