package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"extractor-backend/internal/extract"
)

// WriteZIP bundles the rendered workbook with a plain-text manifest of the
// SPEI tracking codes found on the statement, one per line.
func WriteZIP(w io.Writer, st *extract.Statement, xlsxName string, xlsxData []byte) error {
	zw := zip.NewWriter(w)

	entry, err := zw.Create(xlsxName)
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", xlsxName, err)
	}
	if _, err := entry.Write(xlsxData); err != nil {
		return fmt.Errorf("zip write %s: %w", xlsxName, err)
	}

	claves := st.ClavesRastreo()
	manifest, err := zw.Create("claves_rastreo.txt")
	if err != nil {
		return fmt.Errorf("zip entry claves_rastreo.txt: %w", err)
	}
	if _, err := io.WriteString(manifest, strings.Join(claves, "\n")+"\n"); err != nil {
		return fmt.Errorf("zip write claves_rastreo.txt: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("zip close: %w", err)
	}
	return nil
}
