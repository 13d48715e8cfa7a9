// Package identifycmder provides the identify command, a client for a running
// mnemosyne API server.
package identifycmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/BillDuke13/mnemosyne/pkg/apiclient"
	"github.com/BillDuke13/mnemosyne/pkg/cliui"
	"github.com/BillDuke13/mnemosyne/pkg/config"
	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

type identifyCommander struct {
	apiTarget string
	imagePath string
	jsonOut   bool
	timeout   time.Duration
}

const identifyLongDesc string = `Identify a person through a running mnemosyne API server.

The optional argument is the face hint: the label of the person you expect
(case-insensitive). Without it the server picks its default entry. An image
file may be attached with --image; it is only checked for validity.

The returned summary has already been verified by the server against the
SHA3-256 notes hash committed on-chain.

Examples:
  mnemosyne identify Mom
  mnemosyne identify --image face.jpg
  mnemosyne identify dad --json
  mnemosyne identify --api-target http://localhost:9000`

const identifyShortDesc string = "Identify a person from the memory book"

func NewIdentifyCmd() *cobra.Command {
	cmder := &identifyCommander{}

	cmd := &cobra.Command{
		Use:   "identify [hint]",
		Short: identifyShortDesc,
		Long:  identifyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagAPITarget})
			cmder.apiTarget = v.GetString("client.api_target")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			hint := ""
			if len(args) == 1 {
				hint = args[0]
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), hint)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().StringVarP(&cmder.imagePath, "image", "i", "", "Image file to attach to the request")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the raw entry as JSON")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 60*time.Second, "Request timeout")

	return cmd
}

func (c *identifyCommander) run(ctx context.Context, w io.Writer, hint string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var image []byte
	if c.imagePath != "" {
		var err error
		image, err = os.ReadFile(c.imagePath)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
	}

	client, err := apiclient.New(c.apiTarget, c.timeout)
	if err != nil {
		return err
	}

	if c.jsonOut {
		entry, err := client.Identify(ctx, hint, image)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	}

	fmt.Fprintln(w)

	var entry *memory.Entry
	err = cliui.Step(w, "Identifying via "+c.apiTarget, func() error {
		var err error
		entry, err = client.Identify(ctx, hint, image)
		return err
	})
	if err != nil {
		return err
	}

	return render(w, entry)
}

// render prints an entry with the summary rendered as markdown.
func render(w io.Writer, entry *memory.Entry) error {
	fmt.Fprintf(w, "\n  %s %s\n\n",
		cliui.NameStyle.Render(entry.Label),
		cliui.DimStyle.Render("("+entry.Relationship+")"),
	)

	const width = 14
	fmt.Fprintln(w, cliui.KeyValue("Entry", width, strconv.FormatUint(entry.EntryID, 10)))
	fmt.Fprintln(w, cliui.KeyValue("Blob", width, entry.BlobID))
	fmt.Fprintln(w, cliui.KeyValue("Notes hash", width, cliui.HashStyle.Render(entry.NotesHashHex)))
	if entry.LastInteractionUnixMs > 0 {
		last := time.UnixMilli(entry.LastInteractionUnixMs).Local().Format(time.DateTime)
		fmt.Fprintln(w, cliui.KeyValue("Last seen", width, last))
	}

	summary, err := cliui.RenderMarkdown(entry.Summary)
	if err != nil {
		// Fall back to the raw summary.
		summary = "  " + entry.Summary + "\n"
	}
	fmt.Fprintf(w, "\n%s\n", summary)

	return nil
}
