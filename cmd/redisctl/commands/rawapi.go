package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// rawAPIClient is the verb surface shared by both typed clients.
type rawAPIClient interface {
	Get(ctx context.Context, path string) (map[string]any, error)
	Post(ctx context.Context, path string, body any) (map[string]any, error)
	Put(ctx context.Context, path string, body any) (map[string]any, error)
	Delete(ctx context.Context, path string) (map[string]any, error)
}

// newRawAPICommand builds the get/post/put/delete escape hatch for one
// control plane. Typed commands cover the common paths; this covers the
// rest of the API surface without waiting for a dedicated command.
func newRawAPICommand(clientFn func() (rawAPIClient, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Raw API access",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <path>",
		Short: "Perform a GET request and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn()
			if err != nil {
				return err
			}
			doc, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(doc)
		},
	})

	for _, verb := range []struct {
		use   string
		short string
		call  func(ctx context.Context, client rawAPIClient, path string, payload map[string]any) (map[string]any, error)
	}{
		{
			use:   "post <path>",
			short: "Perform a POST request with a JSON payload",
			call: func(ctx context.Context, client rawAPIClient, path string, payload map[string]any) (map[string]any, error) {
				return client.Post(ctx, path, payload)
			},
		},
		{
			use:   "put <path>",
			short: "Perform a PUT request with a JSON payload",
			call: func(ctx context.Context, client rawAPIClient, path string, payload map[string]any) (map[string]any, error) {
				return client.Put(ctx, path, payload)
			},
		},
	} {
		call := verb.call
		var data string
		sub := &cobra.Command{
			Use:   verb.use,
			Short: verb.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := clientFn()
				if err != nil {
					return err
				}
				payload, err := parseJSONPayload(data)
				if err != nil {
					return err
				}
				doc, err := call(cmd.Context(), client, args[0], payload)
				if err != nil {
					return err
				}
				return render(doc)
			},
		}
		sub.Flags().StringVar(&data, "data", "", "request payload as JSON (@file to read from a file, - for stdin)")
		sub.MarkFlagRequired("data")
		cmd.AddCommand(sub)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <path>",
		Short: "Perform a DELETE request and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn()
			if err != nil {
				return err
			}
			doc, err := client.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(doc)
		},
	})

	return cmd
}
