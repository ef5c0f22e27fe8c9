package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/CompoundForge/internal/application/compound"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

func NewBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch FILE|-",
		Short: "Analyze many element sets from a JSON file",
		Long: "Reads either a JSON array of requests or an object with a \"requests\" array.\n" +
			"Each request has \"symbols\" with optional \"counts\", or a \"formula\".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			reqs, err := parseBatch(data)
			if err != nil {
				return err
			}

			svc, err := cc.Service(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cc)
			defer cancel()

			res, err := svc.AnalyzeBatch(ctx, reqs)
			if err != nil {
				return err
			}
			if cc.OutputFormat == "json" {
				return PrintResult(cmd, res)
			}
			return PrintResult(cmd, batchView{res})
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read batch input")
	}
	return data, nil
}

func parseBatch(data []byte) ([]*compound.AnalyzeRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeBadRequest, "batch input is empty")
	}
	var reqs []*compound.AnalyzeRequest
	if data[0] == '[' {
		if err := json.Unmarshal(data, &reqs); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid batch JSON")
		}
		return reqs, nil
	}
	var wrapped struct {
		Requests []*compound.AnalyzeRequest `json:"requests"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid batch JSON")
	}
	return wrapped.Requests, nil
}

type batchView struct {
	*compound.BatchResult
}

func (v batchView) TableHeaders() []string {
	return []string{"#", "ELEMENTS", "LIKELIHOOD", "BOND", "FORMULAS", "ERROR"}
}

func (v batchView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Items))
	for _, item := range v.Items {
		row := []string{fmt.Sprintf("%d", item.Index), "", "", "", "", ""}
		if r := item.Result; r != nil {
			row[1] = strings.Join(analysisView{r}.symbols(), " ")
			row[2] = r.Likelihood.String()
			row[3] = r.BondType.String()
			row[4] = strings.Join(r.Formulas(), " ")
		}
		if item.Error != nil {
			row[5] = fmt.Sprintf("[%s] %s", item.Error.Code, item.Error.Message)
		}
		rows = append(rows, row)
	}
	return rows
}

func (v batchView) String() string {
	return fmt.Sprintf("%s\n%d succeeded, %d failed",
		FormatTable(v.TableHeaders(), v.TableRows()), v.Succeeded, v.Failed)
}
