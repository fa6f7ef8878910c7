package objectstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/repoanalyzer/internal/model"
)

// TestArtifactKeyFormat pins the upload key layout without requiring a live
// S3 endpoint; Upload itself is exercised against MinIO in integration
// environments, not here.
func TestArtifactKeyFormat(t *testing.T) {
	key := fmt.Sprintf("codeviz/graphs/%s/graph.json", "job-abc-123")
	assert.Equal(t, "codeviz/graphs/job-abc-123/graph.json", key)
}

func TestArtifactMarshalsPrettyJSON(t *testing.T) {
	artifact := &model.GraphArtifact{
		Metadata: model.Metadata{RepoURL: "https://example.com/repo.git", Version: model.ArtifactVersion},
		Nodes:    []model.Node{{ID: "a.py", Name: "a.py", Path: "a.py", Type: "file", Lines: 10, Language: "python"}},
		Stats:    model.Stats{NodeCount: 1, Languages: map[string]int{"python": 1}},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(artifact))

	assert.Contains(t, buf.String(), "\n  \"nodes\"")

	var round model.GraphArtifact
	require.NoError(t, json.Unmarshal(buf.Bytes(), &round))
	assert.Equal(t, artifact.Metadata.RepoURL, round.Metadata.RepoURL)
	assert.Len(t, round.Nodes, 1)
}
