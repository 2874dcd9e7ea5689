package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/user/vsce-audit/pkg/engine"
)

var blocklistHeader = []string{"extension_name", "folder_name", "publisher", "final_score", "reason"}

// WriteBlocklist writes every report with a blocking score to blocklist.csv,
// in enumeration order.
func (w *Writer) WriteBlocklist(reports []engine.ExtensionReport) error {
	f, err := os.Create(filepath.Join(w.OutDir, BlocklistFile))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.UseCRLF = true
	if err := cw.Write(blocklistHeader); err != nil {
		return err
	}
	for _, r := range engine.BlocklistOf(reports) {
		row := []string{r.ExtensionName, r.FolderName, r.PublisherField, strconv.Itoa(r.FinalScore), r.Reason}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}
