//go:build !gosseract

package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

func TestBuildEmbeddedOCRNeedsBuildTag(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.TempDir = t.TempDir()
	cfg.LLM.APIKey = "k"
	cfg.OCR.Backend = "embedded"

	_, err := Build(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConfiguration)
	assert.Contains(t, err.Error(), "ocr engine: ")
	assert.Contains(t, err.Error(), "-tags gosseract")
}
