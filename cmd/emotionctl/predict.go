package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/emotion-detector/internal/imageio"
	"github.com/Brownie44l1/emotion-detector/internal/model"
	"github.com/Brownie44l1/emotion-detector/internal/preprocess"
)

var showScores bool

var predictCmd = &cobra.Command{
	Use:   "predict <image>...",
	Short: "Classify image files without touching the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selection := model.NewSelector(model.ONNXLoader(cfg.ONNX()), logger).Select()
		if onnx, ok := selection.Classifier.(*model.ONNXClassifier); ok {
			defer onnx.Close()
		}
		return runPredict(cmd.OutOrStdout(), selection.Classifier, args)
	},
}

func init() {
	predictCmd.Flags().BoolVar(&showScores, "scores", false, "print every label score")
	rootCmd.AddCommand(predictCmd)
}

// runPredict prints one row per file. Unreadable files get an error row and
// make the command fail after the rest are classified.
func runPredict(out io.Writer, classifier model.Classifier, paths []string) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	header := "FILE\tEMOTION\tCONFIDENCE"
	if showScores {
		for _, l := range model.Labels() {
			header += "\t" + string(l)
		}
	}
	fmt.Fprintln(w, header)

	failed := 0
	for _, p := range paths {
		result, err := classifyFile(classifier, p)
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s\terror: %v\t\n", p, err)
			continue
		}

		row := fmt.Sprintf("%s\t%s\t%.2f", p, result.Label, result.Confidence)
		if showScores {
			for _, l := range model.Labels() {
				row += fmt.Sprintf("\t%.2f", result.Predictions[string(l)])
			}
		}
		fmt.Fprintln(w, row)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be classified", failed, len(paths))
	}
	return nil
}

func classifyFile(classifier model.Classifier, path string) (*model.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := imageio.Decode(data)
	if err != nil {
		return nil, err
	}
	return model.Classify(classifier, preprocess.Preprocess(img))
}
