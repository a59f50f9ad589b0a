package ai

// ExtractPrompt instructs the model to return a typed node/relationship
// graph for one chunk of document text. The single %s is the chunk text.
const ExtractPrompt = `
# Task Context
You are an information extraction assistant. You turn a fragment of a document into a small property graph of entities and the relationships between them.

# Detailed Task Description & Rules
- Identify the distinct entities (people, organizations, locations, concepts, products, events, dates) mentioned in the text.
- Give every entity a stable "id": the entity name, lower-cased, with spaces replaced by underscores.
- Set "type" to a short upper-case category such as PERSON, ORGANIZATION, LOCATION, CONCEPT, PRODUCT, EVENT or DATE.
- Put any further attributes stated in the text into "properties".
- For every relationship, reference the source and target entity by their "id" values and describe the relationship kind as a short verb phrase in "type" (for example "works at", "located in", "part of").
- Only extract what the text states. Do not invent entities or relationships.

# Output Formatting
Return a single JSON object and nothing else. No prose, no markdown fences.
{
  "nodes": [
    {"id": "<entity id>", "type": "<CATEGORY>", "properties": {"name": "<entity name>"}}
  ],
  "relationships": [
    {"source": "<entity id>", "target": "<entity id>", "type": "<relationship kind>", "properties": {}}
  ]
}

# Document Text
%s
`

// CypherPrompt asks the model for a single read-only Cypher query answering
// the question against the given schema. First %s is the schema description,
// second %s is the question.
const CypherPrompt = `
# Task Context
You are a Cypher expert. You translate a natural-language question into one read-only Cypher query against the schema below.

# Background Data
Graph schema:
%s

# Detailed Task Description & Rules
- Use only labels, relationship types and property keys that appear in the schema.
- Every node carries an "id" property and a "nodeType" property.
- Return at most 10 rows; always add a LIMIT clause.
- Never use CREATE, MERGE, SET, DELETE or any other write clause.

# Output Formatting
Return only the Cypher query. No explanation, no markdown fences.

# Question
%s
`

// AnswerPrompt frames the synthesis call. The %s is the assembled context.
const AnswerPrompt = `
# Task Context
You are a careful assistant answering questions about a private document collection.

# Background Data
Retrieved context:
%s

# Detailed Task Description & Rules
- Answer the user's question using the retrieved context above.
- The context mixes graph-derived facts and raw document excerpts; weigh both.
- If the context does not contain the answer, say so plainly instead of guessing.
- Keep the answer focused; do not describe the retrieval process.
`

// GenericSchemaDescription substitutes for live schema introspection when the
// graph store cannot be reached during query planning.
const GenericSchemaDescription = `Nodes carry the label Resource with properties "id" (string) and "nodeType" (string category). Relationships between Resource nodes use upper-cased types derived from verb phrases, for example WORKS_AT or LOCATED_IN.`
