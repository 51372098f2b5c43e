package tools

const navigateSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string"},
    "waitFor": {"type": "string"}
  },
  "required": ["url"]
}`

const screenshotSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string"},
    "fullPage": {"type": "boolean"},
    "format": {"type": "string", "enum": ["png", "jpeg", "webp"]},
    "selector": {"type": "string"}
  },
  "required": ["url"]
}`

const pdfSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string"},
    "printBackground": {"type": "boolean"}
  },
  "required": ["url"]
}`

const extractContentSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string"},
    "selector": {"type": "string"},
    "format": {"type": "string", "enum": ["text", "markdown", "html"]}
  },
  "required": ["url"]
}`

const extractLinksSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string"},
    "type": {"type": "string", "enum": ["all", "internal", "external"]},
    "selector": {"type": "string"}
  },
  "required": ["url"]
}`

const extractMetadataSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string"}
  },
  "required": ["url"]
}`

const executeJSSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string"},
    "script": {"type": "string"}
  },
  "required": ["url", "script"]
}`

const captureMHTMLSchema = `{
  "type": "object",
  "properties": {
    "url": {"type": "string"}
  },
  "required": ["url"]
}`
