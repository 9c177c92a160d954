// Package prompts holds the prompt text sent to the content generation
// provider. Prompts that ask for structured output spell out the exact JSON
// shape; responses still go through the loose decoder in provider.
package prompts

// LeadMagnetSystem frames every lead magnet generation call.
const LeadMagnetSystem = `You are an expert direct-response copywriter who creates lead magnets for coaches and course creators. You write clear, actionable content in a warm, confident voice. When asked for JSON, respond with JSON only.`

// LeadMagnetOutline asks for the e-book skeleton.
// Placeholders: niche, audience, transformation, chapter count.
const LeadMagnetOutline = `Create the outline for a lead magnet e-book.

Niche: %s
Target audience: %s
Transformation the offer promises: %s

Respond with JSON only, in this exact shape:
{
  "title": "compelling e-book title",
  "subtitle": "one-line promise",
  "hook": "2-3 sentence opening hook",
  "chapters": ["chapter 1 title", ... exactly %d items]
}`

// LeadMagnetChapter asks for one chapter body.
// Placeholders: book title, chapter number, chapter title, audience, minimum words.
const LeadMagnetChapter = `Write chapter %d, "%s", of the lead magnet e-book "%s" for this audience: %s.

Requirements:
- at least %d words
- open with a short story or concrete example
- end with one actionable takeaway
- plain text, no markdown headers

Respond with JSON only: {"title": "...", "body": "..."}`

// LeadMagnetBridge asks for the chapter that bridges the free content to the
// paid offer, referencing the earlier chapter titles.
const LeadMagnetBridge = `Write the bridge chapter of the lead magnet e-book "%s". It should recap the journey through these chapters: %s, then naturally introduce the next step for the reader.

Respond with JSON only: {"title": "...", "body": "..."}`

// LeadMagnetCTA asks for the closing call-to-action page.
const LeadMagnetCTA = `Write a closing call-to-action page for the lead magnet e-book "%s". Audience: %s. The CTA should invite the reader to the front-end offer with urgency but without hype.

Respond with JSON only: {"headline": "...", "body": "...", "button_text": "..."}`

// SupplementarySystem frames supplementary document generation.
const SupplementarySystem = `You are an expert at turning e-book content into practical companion documents (workbooks, checklists, cheat sheets). When asked for JSON, respond with JSON only.`

// SupplementaryDocument asks for one companion document.
// Placeholders: document kind, book title, niche, audience.
const SupplementaryDocument = `Create a %s to accompany the lead magnet "%s" (niche: %s, audience: %s).

Respond with JSON only:
{
  "title": "...",
  "intro": "1-2 sentence introduction",
  "sections": [{"heading": "...", "items": ["...", ...]}]
}
Every section needs at least 3 items.`

// CoverConceptSystem frames cover concept generation.
const CoverConceptSystem = `You are a book cover art director. You translate a title and audience into concrete visual direction. When asked for JSON, respond with JSON only.`

// CoverConcept asks for the visual direction passed to the renderer.
// Placeholders: title, subtitle, niche.
const CoverConcept = `Design the cover concept for "%s" (subtitle: %s), a lead magnet in the %s niche.

Respond with JSON only:
{
  "palette": ["#hex", "#hex", "#hex"],
  "title_treatment": "short description of the type treatment",
  "imagery": "short description of the imagery",
  "mood": "one or two words"
}`

// FunnelIdeasSystem frames funnel idea generation.
const FunnelIdeasSystem = `You are a funnel strategist for coaches and creators. You propose complete funnel concepts: a lead magnet, a front-end product, and an upsell. When asked for JSON, respond with JSON only.`

// FunnelIdeas asks for a batch of funnel concepts.
// Placeholders: count, niche, audience.
const FunnelIdeas = `Propose %d funnel ideas for the %s niche, audience: %s.

Respond with JSON only:
{
  "ideas": [
    {
      "name": "funnel name",
      "lead_magnet": "lead magnet concept",
      "frontend": "front-end product concept",
      "upsell": "upsell concept",
      "angle": "one sentence on why this works for the audience"
    }
  ]
}`
