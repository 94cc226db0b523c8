package analysis

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxmine/qr-analyzer/internal/models"
	"github.com/wxmine/qr-analyzer/internal/utils/validator"
	"github.com/wxmine/qr-analyzer/pkg/logger"
)

// fakeAnalyzer records analyzed paths and reports one QR code per call, tagged
// with the original filename recovered from the temp name.
type fakeAnalyzer struct {
	mu     sync.Mutex
	paths  []string
	counts map[string]int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, path string) *models.AnalysisReport {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	report := models.NewReport()
	report.TotalQRCodes = 1
	if f.counts != nil {
		// 临时文件名形如 uuid_原始文件名
		parts := strings.SplitN(filepath.Base(path), "_", 2)
		if len(parts) == 2 {
			report.TotalQRCodes = f.counts[parts[1]]
		}
	}
	return report
}

// formFile builds a real multipart.File + FileHeader pair the way gin hands
// them to the handler.
func formFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	return file, header
}

func formFiles(t *testing.T, filenames ...string) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range filenames {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["files"]
}

func newTestService(t *testing.T, az DocumentAnalyzer) Service {
	t.Helper()
	log := logger.NewTestLogger()
	return NewService(az, validator.New(log, nil), log, &ServiceConfig{
		TempDir:       t.TempDir(),
		MaxFileSize:   16 * 1024 * 1024,
		MaxConcurrent: 3,
	})
}

func TestAnalyzeUploadCleansTempFile(t *testing.T) {
	az := &fakeAnalyzer{}
	svc := newTestService(t, az)

	file, header := formFile(t, "report.pdf", []byte("%PDF-1.4 test"))
	defer file.Close()

	report, err := svc.AnalyzeUpload(context.Background(), file, header)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalQRCodes)

	require.Len(t, az.paths, 1)
	assert.True(t, strings.HasSuffix(az.paths[0], "_report.pdf"))

	// 分析结束后临时文件必须被清理
	_, statErr := os.Stat(az.paths[0])
	assert.True(t, os.IsNotExist(statErr))
}

func TestAnalyzeUploadRejectsWrongExtension(t *testing.T) {
	az := &fakeAnalyzer{}
	svc := newTestService(t, az)

	file, header := formFile(t, "image.png", []byte("not a pdf"))
	defer file.Close()

	report, err := svc.AnalyzeUpload(context.Background(), file, header)
	assert.Error(t, err)
	assert.Nil(t, report)
	assert.Empty(t, az.paths)
}

func TestAnalyzeBatchPreservesOrder(t *testing.T) {
	az := &fakeAnalyzer{counts: map[string]int{
		"a.pdf": 1,
		"b.pdf": 2,
		"c.pdf": 3,
	}}
	svc := newTestService(t, az)

	reports, err := svc.AnalyzeBatch(context.Background(), formFiles(t, "a.pdf", "b.pdf", "c.pdf"))
	require.NoError(t, err)
	require.Len(t, reports, 3)

	// 并发执行，结果顺序仍与输入顺序一致
	assert.Equal(t, 1, reports[0].TotalQRCodes)
	assert.Equal(t, 2, reports[1].TotalQRCodes)
	assert.Equal(t, 3, reports[2].TotalQRCodes)
}

func TestAnalyzeBatchFailsOnInvalidFile(t *testing.T) {
	az := &fakeAnalyzer{}
	svc := newTestService(t, az)

	reports, err := svc.AnalyzeBatch(context.Background(), formFiles(t, "a.pdf", "bad.png"))
	assert.Error(t, err)
	assert.Nil(t, reports)
}
