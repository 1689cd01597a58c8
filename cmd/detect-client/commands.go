package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/eleven-am/cascade-detect/internal/dto"
	"github.com/spf13/cobra"
)

var imageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Annotate a still image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(serverURL, timeout)
		body, err := c.upload(cmd.Context(), "/detect", "image", args[0], feature)
		if err != nil {
			return err
		}

		var resp dto.ImageResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		printDetections(cmd.OutOrStdout(), resp.Detections)
		return deliver(cmd.OutOrStdout(), c, resp.ImageData, resp.ImageURL)
	},
}

var videoCmd = &cobra.Command{
	Use:   "video <file>",
	Short: "Annotate every frame of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(serverURL, timeout)
		body, err := c.upload(cmd.Context(), "/detect_video", "video", args[0], feature)
		if err != nil {
			return err
		}

		var resp dto.VideoResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded as %s\n", resp.OriginalFilename)
		printDetections(cmd.OutOrStdout(), resp.Detections)
		return deliver(cmd.OutOrStdout(), c, resp.VideoData, resp.VideoURL)
	},
}

var webcamCmd = &cobra.Command{
	Use:   "webcam <file>",
	Short: "Get raw detection boxes for a single frame",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(serverURL, timeout)
		body, err := c.upload(cmd.Context(), "/detect_webcam", "image", args[0], feature)
		if err != nil {
			return err
		}

		var resp dto.WebcamResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		printDetections(cmd.OutOrStdout(), resp.Detections)
		printBoxes(cmd.OutOrStdout(), resp)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{imageCmd, videoCmd} {
		cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the annotated result to this file")
	}
	rootCmd.AddCommand(imageCmd, videoCmd, webcamCmd)
}

func printDetections(w io.Writer, detections []string) {
	for _, d := range detections {
		fmt.Fprintln(w, d)
	}
}

func printBoxes(w io.Writer, resp dto.WebcamResponse) {
	if len(resp.Boxes) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "X\tY\tWIDTH\tHEIGHT\tCOLOR")
	fmt.Fprintln(tw, "-\t-\t-----\t------\t-----")
	for i, b := range resp.Boxes {
		color := ""
		if i < len(resp.Colors) {
			color = resp.Colors[i]
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\n", b.X, b.Y, b.Width, b.Height, color)
	}
	tw.Flush()
}

// deliver writes an inline payload to --out, or reports where the server
// published the artifact.
func deliver(w io.Writer, c *client, data, url string) error {
	if url != "" {
		fmt.Fprintf(w, "Result: %s\n", c.resolve(url))
		return nil
	}
	if outPath == "" || data == "" {
		return nil
	}

	raw, err := decodeDataURL(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Fprintf(w, "Wrote %s (%d bytes)\n", outPath, len(raw))
	return nil
}
