package prompt

import (
	"time"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

// Prompt ids
const (
	PromptConversationAnalysis    = "conversation_analysis"
	PromptQuickFeedback           = "quick_feedback"
	PromptChildDevelopment        = "child_development"
	PromptCoachingTips            = "coaching_tips"
	PromptSentimentInterpretation = "sentiment_interpretation"
)

var promptIDByKind = map[entities.AnalysisKind]string{
	entities.AnalysisComprehensive:           PromptConversationAnalysis,
	entities.AnalysisQuickFeedback:           PromptQuickFeedback,
	entities.AnalysisChildDevelopment:        PromptChildDevelopment,
	entities.AnalysisCoachingTips:            PromptCoachingTips,
	entities.AnalysisSentimentInterpretation: PromptSentimentInterpretation,
}

// IDForKind maps an analysis kind to its prompt id.
func IDForKind(kind entities.AnalysisKind) (string, bool) {
	id, ok := promptIDByKind[kind]
	return id, ok
}

const conversationAnalysisTemplate = `다음은 교사와 아동의 대화 전사본입니다. 유아교육 전문가의 관점에서 종합적으로 분석해주세요.

## 대화 전사본
{transcript}

## 화자 정보
{teacher_info}
{child_info}

## 감정 분석
{sentiment_analysis}

## 분석 요청사항
1. **상호작용 품질**: 교사-아동 상호작용의 전반적인 품질을 평가해주세요.
2. **교사의 강점**: 대화에서 드러난 교사의 긍정적인 상호작용 기법을 구체적인 발화를 인용하며 설명해주세요.
3. **개선 포인트**: 더 나은 상호작용을 위해 개선할 수 있는 부분을 2-3가지 제안해주세요.
4. **아동 반응 분석**: 아동의 반응과 참여도를 분석해주세요.
5. **코칭 피드백**: 교사에게 따뜻하고 실천 가능한 코칭 피드백을 제공해주세요.

구체적인 발화를 인용하면서 따뜻하고 전문적인 어조로 작성해주세요.`

const quickFeedbackTemplate = `다음 교사-아동 대화를 읽고 교사에게 즉시 적용할 수 있는 핵심 피드백을 간단하게 제공해주세요.

## 대화 내용
{transcript}

## 피드백 형식
1. **잘한 점** (2가지): 구체적인 발화를 근거로
2. **개선 제안** (1가지): 바로 시도할 수 있는 구체적인 방법
3. **한 줄 격려**: 교사를 격려하는 메시지

간결하고 격려적인 어조로 작성해주세요.`

const childDevelopmentTemplate = `다음 대화에서 아동의 발화를 발달 심리학 관점에서 분석해주세요.

## 전체 대화
{transcript}

## 아동 발화
{child_utterances}

## 분석 요청사항
1. **언어 발달**: 어휘 수준, 문장 구조, 표현력을 분석해주세요.
2. **인지 발달**: 사고 과정, 문제 해결, 호기심의 표현을 분석해주세요.
3. **사회정서 발달**: 감정 표현과 상호작용 태도를 분석해주세요.
4. **발달 지원 제안**: 현재 발달 단계에 맞는 지원 방법을 제안해주세요.

과학적 근거를 바탕으로 체계적으로 작성하되, 진단이 아닌 관찰 기반 분석임을 유의해주세요.`

const coachingTipsTemplate = `다음 상황의 교사-아동 대화를 바탕으로 교사를 위한 실용적인 코칭 팁을 제공해주세요.

## 상황
{situation}

## 대화 내용
{transcript}

## 코칭 팁 형식
1. **이 상황의 핵심 포인트**: 이런 상황에서 중요한 상호작용 원칙
2. **구체적 실천 팁** (3가지): 내일 바로 적용할 수 있는 구체적인 방법
3. **추천 발화 예시**: 이 상황에서 사용할 수 있는 교사 발화 예시 2-3개
4. **주의할 점**: 피해야 할 상호작용 패턴

실무에 바로 적용 가능하도록 구체적으로 작성해주세요.`

const sentimentInterpretationTemplate = `다음 감정 분석 결과를 교육적 관점에서 해석해주세요.

## 감정 분석 데이터
{sentiment_data}

## 대화 맥락
{context}

## 해석 요청사항
1. **감정 흐름 해석**: 대화 중 감정 변화의 의미를 해석해주세요.
2. **교육적 시사점**: 감정 패턴이 시사하는 교육적 의미를 설명해주세요.
3. **감정 대응 제안**: 교사가 아동의 감정에 더 잘 반응할 수 있는 방법을 제안해주세요.

감정 데이터가 없는 경우 대화 맥락만으로 추론 가능한 범위에서 해석해주세요.`

// defaultPrompts builds the initial prompt set written when no prompts
// file exists yet.
func defaultPrompts() map[string]*entities.PromptTemplate {
	now := time.Now()
	return map[string]*entities.PromptTemplate{
		PromptConversationAnalysis: {
			Name:              "종합 대화 분석",
			Description:       "교사-아동 대화의 전면적인 분석과 상세한 코칭 피드백을 제공합니다.",
			Template:          conversationAnalysisTemplate,
			RequiredVariables: []string{"transcript", "teacher_info", "child_info", "sentiment_analysis"},
			LastModified:      now,
			ModifiedBy:        "system",
		},
		PromptQuickFeedback: {
			Name:              "빠른 피드백",
			Description:       "즉석에서 핵심적인 피드백을 간단하게 제공합니다.",
			Template:          quickFeedbackTemplate,
			RequiredVariables: []string{"transcript"},
			LastModified:      now,
			ModifiedBy:        "system",
		},
		PromptChildDevelopment: {
			Name:              "아동 발달 분석",
			Description:       "발달 심리학 관점에서 아동의 현재 상태를 전문적으로 분석합니다.",
			Template:          childDevelopmentTemplate,
			RequiredVariables: []string{"transcript", "child_utterances"},
			LastModified:      now,
			ModifiedBy:        "system",
		},
		PromptCoachingTips: {
			Name:              "코칭 팁",
			Description:       "상황별 구체적인 교사 코칭 가이드와 실무 팁을 제공합니다.",
			Template:          coachingTipsTemplate,
			RequiredVariables: []string{"situation", "transcript"},
			LastModified:      now,
			ModifiedBy:        "system",
		},
		PromptSentimentInterpretation: {
			Name:              "감정 해석",
			Description:       "감정 분석 결과를 교육적 관점에서 해석하고 활용 방안을 제시합니다.",
			Template:          sentimentInterpretationTemplate,
			RequiredVariables: []string{"sentiment_data", "context"},
			LastModified:      now,
			ModifiedBy:        "system",
		},
	}
}
