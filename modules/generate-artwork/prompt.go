package generateartwork

import (
	"fmt"
	"strings"
)

// Style - 고정 스타일 식별자와 그에 딸린 템플릿 텍스트.
// 테이블은 불변이며, 모르는 키는 impressionist로 폴백한다.
type Style struct {
	Key         string
	Description string
	Technique   string
}

// DefaultStyleKey - 알 수 없는 스타일 키의 폴백
const DefaultStyleKey = "impressionist"

var styles = map[string]Style{
	"impressionist": {
		Key:         "impressionist",
		Description: "an impressionist painting with visible brushstrokes and natural light",
		Technique: `[IMPRESSIONIST TECHNIQUE]
- Short, broken brushstrokes that remain visible in the finished piece
- Emphasis on the changing qualities of natural light and its reflection
- Soft edges between color fields, no hard outlines
- Vibrant complementary colors placed side by side instead of blended
- Everyday outdoor atmosphere captured as a fleeting moment`,
	},
	"watercolor": {
		Key:         "watercolor",
		Description: "a delicate watercolor painting with soft washes and flowing pigment",
		Technique: `[WATERCOLOR TECHNIQUE]
- Transparent layered washes with the white of the paper showing through
- Wet-on-wet blooms where colors bleed softly into each other
- Loose, flowing edges with controlled pooling of pigment
- Light granulation texture in sky and water areas
- Reserved highlights left as untouched paper`,
	},
	"oil-painting": {
		Key:         "oil-painting",
		Description: "a classical oil painting with rich texture and deep color",
		Technique: `[OIL PAINTING TECHNIQUE]
- Thick impasto strokes building physical texture on the canvas
- Rich, saturated pigments with deep shadow tones
- Glazed layers creating luminous depth in mid-tones
- Classical composition with strong chiaroscuro lighting
- Visible canvas weave in thinner passages`,
	},
	"digital-art": {
		Key:         "digital-art",
		Description: "polished digital concept art with dramatic lighting",
		Technique: `[DIGITAL ART TECHNIQUE]
- Clean, polished rendering with smooth gradient shading
- Dramatic cinematic lighting with strong rim light
- High detail focal points against simplified backgrounds
- Saturated, harmonized color palette with atmospheric depth
- Subtle painterly texture overlay to avoid a sterile look`,
	},
	"abstract": {
		Key:         "abstract",
		Description: "an abstract interpretation using bold shapes and expressive color",
		Technique: `[ABSTRACT TECHNIQUE]
- Recognizable subjects reduced to bold geometric and organic shapes
- Expressive, non-literal color choices driven by mood
- Strong compositional rhythm through repeated forms
- Layered textures and overlapping translucent planes
- Essential character of each subject preserved despite abstraction`,
	},
	"photorealistic": {
		Key:         "photorealistic",
		Description: "a photorealistic rendering with fine detail and accurate lighting",
		Technique: `[PHOTOREALISTIC TECHNIQUE]
- Faithful reproduction of surface detail, texture, and material
- Physically accurate lighting, shadows, and reflections
- Natural depth of field matching a real camera lens
- True-to-life color grading without stylization
- Crisp focus on every subject from the source photos`,
	},
	"anime": {
		Key:         "anime",
		Description: "a vibrant anime illustration with clean linework and cel shading",
		Technique: `[ANIME TECHNIQUE]
- Clean, confident linework with varied line weight
- Flat cel shading with hard-edged shadow shapes
- Vibrant saturated colors and luminous sky gradients
- Expressive, simplified faces that keep each person recognizable
- 2D illustration aesthetic, never photorealistic or 3D rendered`,
	},
}

// StyleFor - 스타일 키 조회 (모르는 키는 기본 스타일)
func StyleFor(key string) Style {
	if s, ok := styles[key]; ok {
		return s
	}
	return styles[DefaultStyleKey]
}

// 생성 프롬프트 말미에 항상 붙는 필수 제약.
// 분석 결과의 모든 요소를 포함하고, 없는 것은 더하지 말라는 지시.
const mandatoryConstraints = `[MANDATORY CONSTRAINTS]
1. Include EVERY person, object, building, and environment element listed in the photo analysis above.
2. Do NOT add any person, object, or element that is not listed in the analysis.
3. Do NOT omit or merge people - the exact number of people must match the analysis.
4. Keep the spatial relationships between elements as described in the analysis.
5. The final image must be ONE unified artwork, not a collage or grid of the source photos.`

// ComposePrompt - 분석 텍스트, 스타일 템플릿, 유저 프롬프트를 결정적으로 조립한다.
// 순수 함수: I/O 없음, 실패 없음, 같은 입력이면 항상 같은 문자열.
func ComposePrompt(photoAnalysis, styleKey, userPrompt string, photoCount int) string {
	style := StyleFor(styleKey)

	userIntent := strings.TrimSpace(userPrompt)
	if userIntent == "" {
		userIntent = "a beautiful artwork celebrating this travel memory"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Create %s based on the %d travel photo(s) I provided.\n\n", style.Description, photoCount)

	b.WriteString("[PHOTO ANALYSIS - GROUND TRUTH]\n")
	b.WriteString("The following inventory describes everything visible in the source photos. ")
	b.WriteString("Treat it as the complete and authoritative list of what must appear in the artwork:\n\n")
	b.WriteString(photoAnalysis)
	b.WriteString("\n\n")

	b.WriteString(style.Technique)
	b.WriteString("\n\n")

	b.WriteString("[USER REQUEST]\n")
	b.WriteString(userIntent)
	b.WriteString("\n\n")

	b.WriteString(mandatoryConstraints)

	return b.String()
}

// ComposeSimplifiedPrompt - 모델 거부 대비 폴백용 축약 프롬프트.
// 정합성 요구사항이 아니라 복원력 조치이며, 1회만 시도된다.
func ComposeSimplifiedPrompt(styleKey string, photoCount int) string {
	style := StyleFor(styleKey)
	return fmt.Sprintf(
		"Create %s that combines the %d reference photo(s) into one unified scene. Include all people and landmarks visible in the photos.",
		style.Description, photoCount)
}
