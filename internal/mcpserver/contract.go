package mcpserver

// SlideFormatContract describes the canonical slide JSON structure that
// LLM consumers should follow when reading or composing presentations.
const SlideFormatContract = `# Present99 Slide Format Contract

Every presentation is a JSON object with an ordered ` + "`" + `slides` + "`" + ` array.

## Structure

` + "```" + `json
{
  "id": "c2f8…",
  "topic": "The Future of Remote Work",
  "themeId": "purple-gradient",
  "slides": [
    {
      "id": "1",
      "layout": "title",
      "title": "The Future of Remote Work",
      "subtitle": "An AI-Generated Presentation",
      "content": [],
      "imagePrompt": "",
      "imageUrl": ""
    }
  ]
}
` + "```" + `

## Layouts

| layout | purpose | notes |
|---|---|---|
| ` + "`" + `title` + "`" + ` | opening slide | uses title + subtitle, no bullets |
| ` + "`" + `content` + "`" + ` | bullet list | 3-5 items in content |
| ` + "`" + `two-column` + "`" + ` | split bullet list | content is halved left/right |
| ` + "`" + `image-text` + "`" + ` | image beside bullets | set imagePrompt for generation |
| ` + "`" + `big-image` + "`" + ` | full-width image | optional caption in content[0] |
| ` + "`" + `quote` + "`" + ` | centered quotation | quote in content[0], author in subtitle |
| ` + "`" + `section-header` + "`" + ` | chapter divider | large title, slide id as number |
| ` + "`" + `comparison` + "`" + ` | side-by-side contrast | content halved into two columns |

## Rules

1. **Slide ids** are strings, sequential from "1", unique within the deck.
2. **Only ` + "`" + `image-text` + "`" + ` and ` + "`" + `big-image` + "`" + ` slides are illustrated.** An
   ` + "`" + `imagePrompt` + "`" + ` on any other layout is ignored by the image pipeline.
3. **` + "`" + `imageUrl` + "`" + ` is owned by the server.** It is filled in asynchronously
   when a generated image finishes; never set it by hand.
4. **Image prompts** should be specific and visual ("A bright modern office
   with plants, wide angle"), not abstract ("success").
5. **Theme ids** come from the list_themes tool; unknown ids fall back to
   the default theme.
`
