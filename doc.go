// Package clipdex is a Go client for the clipdex video retrieval backend.
//
// The backend indexes movie frames and answers keyword, embedding, colour
// sketch and similarity queries. This package builds the requests, returns
// the decoded result lists and renders result cards.
//
//	client, _ := clipdex.New(clipdex.WithBaseURL("http://localhost:5000"))
//	res, err := client.Query(ctx, clipdex.TextQuery{Query: "dog, car", Embedding: true})
//	if err != nil {
//	    // errors.Is(err, clipdex.ErrRequestFailed)
//	}
//	clips, _ := client.MovieClips(ctx, res[0])
//	_ = client.Submit(ctx, clips[0].String("movie_name"), 1200)
//
// Every failed call returns an error and writes one Warn entry to the
// configured zap logger. Nothing is retried or cached.
package clipdex
