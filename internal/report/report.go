package report

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// Generator produces the AI investment report from a caller-built context
// block of current dashboard data.
type Generator struct {
	logger *logrus.Logger
	client *genai.Client
}

// NewGenerator builds a Gemini-backed generator. Callers skip construction
// entirely when no API key is configured; the report feature is then
// disabled rather than failing at request time.
func NewGenerator(ctx context.Context, apiKey string, logger *logrus.Logger) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &Generator{logger: logger, client: client}, nil
}

// Models lists the model names that support content generation.
func (g *Generator) Models(ctx context.Context) ([]string, error) {
	var names []string
	for model, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		if slices.Contains(model.SupportedActions, "generateContent") {
			names = append(names, model.Name)
		}
	}
	return names, nil
}

const promptTemplate = `당신은 금융 및 부동산 투자 전문가입니다. 아래 제공된 자산 데이터를 바탕으로 투자 분석 리포트를 작성해주세요.

[분석 대상 데이터]
%s

[요청 사항]
1. 현재 시장 상황 분석 (가격 흐름 및 변동성)
2. 주요 긍정적/부정적 요인 분석
3. 향후 전망 및 투자 전략 (매수/매도/관망 의견 포함)
4. 리스크 요인
5. (부동산인 경우) 전용면적별 가격 적정성 및 주변 시세 대비 저평가/고평가 여부 분석

마크다운 형식으로 가독성 있게 작성해주세요.`

// Generate renders the investment report for the given context block.
func (g *Generator) Generate(ctx context.Context, model, contextText string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, contextText)

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		g.logger.WithError(err).WithField("model", model).Error("Report generation failed")
		return "", fmt.Errorf("report generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("model %s returned an empty report", model)
	}
	return text, nil
}
