// Package vision derives a coarse scene description from an uploaded image
// by ranking a fixed set of candidate labels with a zero-shot image
// classifier served over the Hugging Face inference API.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sonara/soundscape/internal/config"
)

// candidateLabels is the fixed vocabulary the classifier ranks against. The
// labels are scene-level on purpose; the interpreter fills in the detail.
var candidateLabels = []string{
	"a forest",
	"an ocean shore",
	"a busy city street",
	"rain",
	"a thunderstorm",
	"mountains",
	"a river",
	"a crowded market",
	"a quiet room",
	"wind through trees",
	"a fireplace",
	"a jungle",
	"a desert",
	"falling snow",
	"birdsong at dawn",
	"night insects",
}

const topLabels = 3

// Describer calls the zero-shot classifier. A nil Describer is usable and
// always returns an empty description.
type Describer struct {
	httpClient *http.Client
	endpoint   string
	model      string
	token      string
}

func New(cfg config.VisionConfig) *Describer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Describer{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		token:      cfg.Token,
	}
}

type classifyRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
}

type classifyParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type classifyScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Describe returns a short phrase built from the top-ranked candidate labels
// for the image.
func (d *Describer) Describe(ctx context.Context, image []byte) (string, error) {
	if d == nil {
		return "", nil
	}
	if len(image) == 0 {
		return "", nil
	}

	payload, err := json.Marshal(classifyRequest{
		Inputs:     base64.StdEncoding.EncodeToString(image),
		Parameters: classifyParameters{CandidateLabels: candidateLabels},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s", d.endpoint, d.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision: classifier returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var scores []classifyScore
	if err := json.Unmarshal(body, &scores); err != nil {
		return "", fmt.Errorf("vision: decode classifier response: %w", err)
	}
	return joinTopLabels(scores), nil
}

func joinTopLabels(scores []classifyScore) string {
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	labels := make([]string, 0, topLabels)
	for _, s := range scores {
		if strings.TrimSpace(s.Label) == "" {
			continue
		}
		labels = append(labels, s.Label)
		if len(labels) == topLabels {
			break
		}
	}
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
	}
}
