// Package assistant implements the conversational pipeline: topic gating,
// search-term extraction, product ranking, and Turkish response generation,
// with per-user conversational memory threaded through every model call.
package assistant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the instruction templates for every model call in the
// pipeline. Each field is a fmt template; the zero value of a field means
// "use the built-in default". Operators can override individual prompts
// through a YAML file without rebuilding.
type Prompts struct {
	ShouldAnswer  string `yaml:"shouldAnswer"`
	NeedsSearch   string `yaml:"needsSearch"`
	UseCatalog    string `yaml:"useCatalog"`
	ExtractTerms  string `yaml:"extractTerms"`
	RewriteQuery  string `yaml:"rewriteQuery"`
	FilterScore   string `yaml:"filterScore"`
	Organize      string `yaml:"organize"`
	Refine        string `yaml:"refine"`
	Respond       string `yaml:"respond"`
	CatalogReply  string `yaml:"catalogReply"`
	General       string `yaml:"general"`
	ErrorApology  string `yaml:"errorApology"`
	Summarize     string `yaml:"summarize"`
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() Prompts {
	return Prompts{
		ShouldAnswer: shouldAnswerPrompt,
		NeedsSearch:  needsSearchPrompt,
		UseCatalog:   useCatalogPrompt,
		ExtractTerms: extractTermsPrompt,
		RewriteQuery: rewriteQueryPrompt,
		FilterScore:  filterScorePrompt,
		Organize:     organizePrompt,
		Refine:       refinePrompt,
		Respond:      respondPrompt,
		CatalogReply: catalogReplyPrompt,
		General:      generalPrompt,
		ErrorApology: errorApologyPrompt,
		Summarize:    summarizePrompt,
	}
}

// LoadPrompts reads YAML overrides from path and merges them over the
// defaults. An empty path returns the defaults unchanged.
func LoadPrompts(path string) (Prompts, error) {
	p := DefaultPrompts()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("read prompts %s: %w", path, err)
	}
	var overrides Prompts
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return p, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	p.merge(overrides)
	return p, nil
}

func (p *Prompts) merge(o Prompts) {
	if o.ShouldAnswer != "" {
		p.ShouldAnswer = o.ShouldAnswer
	}
	if o.NeedsSearch != "" {
		p.NeedsSearch = o.NeedsSearch
	}
	if o.UseCatalog != "" {
		p.UseCatalog = o.UseCatalog
	}
	if o.ExtractTerms != "" {
		p.ExtractTerms = o.ExtractTerms
	}
	if o.RewriteQuery != "" {
		p.RewriteQuery = o.RewriteQuery
	}
	if o.FilterScore != "" {
		p.FilterScore = o.FilterScore
	}
	if o.Organize != "" {
		p.Organize = o.Organize
	}
	if o.Refine != "" {
		p.Refine = o.Refine
	}
	if o.Respond != "" {
		p.Respond = o.Respond
	}
	if o.CatalogReply != "" {
		p.CatalogReply = o.CatalogReply
	}
	if o.General != "" {
		p.General = o.General
	}
	if o.ErrorApology != "" {
		p.ErrorApology = o.ErrorApology
	}
	if o.Summarize != "" {
		p.Summarize = o.Summarize
	}
}

// Fixed Turkish fallback messages. These are the only texts the user sees
// when the pipeline refuses or comes back empty, so they stay constant
// regardless of prompt overrides.
const (
	RefusalMessage   = "Üzgünüm, sadece yemek, market ve alışveriş ile ilgili sorularda yardımcı olabiliyorum."
	NoResultsMessage = "Üzgünüm, aradığınız ürünlerle ilgili sonuç bulamadım."
	NoMatchMessage   = "Üzgünüm, aradığınız ürünle tam olarak eşleşen bir sonuç bulamadım."
	GenericErrorMsg  = "Üzgünüm, şu anda yanıt oluşturamıyorum."
	GeneralErrorMsg  = "Üzgünüm, şu anda bu soruya yanıt veremiyorum."
)

const shouldAnswerPrompt = `You are a helpful assistant for a Turkish grocery shopping app.

Determine if the following question is related to:
- Food products, groceries, or shopping
- Market chains, prices, or product comparisons
- Cooking, recipes, or food preparation

Context from previous conversation:
%s

User question: %q

Answer with only YES if it's related to food/shopping/markets, or NO if it's completely off-topic.`

const needsSearchPrompt = `You are a classification assistant for a Turkish shopping app.

Determine if this question needs product search (prices, availability, comparison)
or can be answered with general knowledge (cooking tips, nutrition, etc.).

Context: %s
Question: %q

Examples:
- "elma fiyatı nedir?" -> YES (needs search)
- "elma nasıl saklanır?" -> NO (general knowledge)
- "bu ürünler ne kadar?" -> YES (needs search)
- "bu malzemeyi nasıl kullanırım?" -> NO (general knowledge)

Answer with only YES or NO.`

const useCatalogPrompt = `You are a classification assistant.

Your task is to decide whether the following user input needs to query a product database using SQL
or can be answered directly.

The conversation so far:
%s

Examples:
- "elma fiyatı nedir?" -> YES
- "A101 güvenilir mi?" -> NO
- "en ucuz yoğurt nerede?" -> YES
- "Migros ne zaman kuruldu?" -> NO
- "Mercimek çorbası için gerekli malzemeler nelerdir?" -> NO
- "bunlar ne kadar?" (when context shows specific products) -> YES
- "süt yemek yaparken kullanılabilir mi?" -> NO

Important: Look at the conversation context. If the user is asking a follow-up question about products that were already retrieved (like asking about usage, preparation, or general information about those products), answer NO. If they're asking for new product searches or price comparisons, answer YES.

User input:
%q

Answer with only YES or NO.`

const extractTermsPrompt = `Extract product names from this Turkish query and return ONLY a JSON array.

Query: %q
Context: %s

Rules:
- Extract specific food/product names (muz, elma, süt, etc.)
- Use base product names, not adjectives
- For follow-up questions with "bu/bunlar", check context

Examples:
Query: "muz fiyatları ne kadar?" -> ["muz"]
Query: "süt ve peynir ne kadar?" -> ["süt", "peynir"]
Query: "market nasıl?" -> []

IMPORTANT: Return ONLY the JSON array, no other text:`

const rewriteQueryPrompt = `You are a helpful assistant that rewrites follow-up questions about grocery products to make them clear and complete.

Here is the recent conversation history between the user and the assistant:
%s

The user just asked:
%q

Your task:
- If this is a follow-up question that refers to previous products (using words like "bu", "o", "şu", "bunlar", etc.), rewrite it to include the specific product names from the conversation history.
- Rewrite the question to be fully self-contained and unambiguous.
- The rewritten version should include product names, market names, quantities, and other details if available in context.
- Keep the question in Turkish.
- DO NOT answer the question, only rewrite it.

Output only the rewritten question, nothing else.
Important: Don't add anything to the user questions. Just paraphrase and make references explicit.`

const filterScorePrompt = `You are a helpful shopping assistant helping a Turkish user find products.

User said: %q
Previous conversation: %s

Here are the available products:
%s

Your job: Help the user by selecting the most relevant products for their needs.

Think about what the user really wants:
- If they mention "diğer marketler" (other markets), they want alternatives to what they mentioned
- If they ask for "elma" (apple), they probably want actual apples, not apple juice or vinegar
- If they mention a specific store, understand whether they want only that store or are excluding it
- Be helpful and flexible, not overly strict about exact wording

Select products that would genuinely help this user. Score each selected product:
- 10: Perfect match for what they're asking
- 8-9: Very good option they'd probably want
- 7: Good alternative option
- 6: Somewhat relevant, might be useful

Return a JSON array with your selections:
[
    {"index": 0, "score": 9, "reason": "fresh apple from alternative market"},
    {"index": 3, "score": 8, "reason": "another apple variety they might like"}
]

Be helpful and inclusive rather than restrictive. The user wants good options.`

const organizePrompt = `You're helping organize a response for a Turkish shopping query.

User asked: %q
Context: %s

Available products to include in response:
%s

Think about how to best help this user, then organize the products:
- Primary products: the main ones to highlight (3-8 products)
- Secondary products: additional options if helpful (0-3 products)

What type of response would be most helpful?
- "price_comparison": show different price options
- "market_alternatives": show options from different markets
- "product_variety": show different types/brands
- "simple_answer": just show the best few options

Return JSON:
{
    "response_type": "price_comparison" | "market_alternatives" | "product_variety" | "simple_answer",
    "primary_products": [0, 1, 2, 3, 4],
    "secondary_products": [5, 6],
    "organization_strategy": "by_price" | "by_market" | "by_relevance"
}

Select indices that will create a helpful, informative response.`

const refinePrompt = `You are a smart assistant helping with Turkish product search.

- The user asked:
%s

- The chat history so far:
%s

- You are given a table of candidate products from a database query.
- Decide which rows best match the user's actual intent.
- The ones that are semantically more similar to what the user wants are more likely to be the correct products.

Here are the candidate rows:
%s

Return the selected row(s) as a JSON list of integers, corresponding to their row numbers in the table above (zero-indexed from the top). No explanation, no markdown, just the list.

Example:
[0, 2]
Note: You can return just 1 row if the user asks for something like 'most' or 'least' or 'cheapest'.`

const respondPrompt = `You're a helpful Turkish shopping assistant creating a response.

User asked: %q
Previous chat: %s
Response type: %s

Main products to mention:
%s

Additional options (if relevant):
%s

Create a natural, helpful response in Turkish that:
1. Directly addresses what the user asked
2. Includes the market name for each product
3. Presents prices clearly
4. Feels conversational and friendly
5. Uses the exact product information provided (don't modify names/prices)
6. Preserves the [Ürüne git] links
7. IMPORTANT: Keep the product format exactly as provided with ** around names

Write a complete, helpful response in Turkish, preserving all product details exactly as provided.`

const catalogReplyPrompt = `You are a helpful assistant that replies in Turkish.

The user asked this shopping-related question in Turkish:
%q

- The conversation so far:
%s

Below is a list of product rows retrieved from a database. Each row includes name, price, market_name, and possibly product_link.

%s

Your task:
- Write a natural, friendly Turkish response to the user.
- Mention the best-matching product(s) with their name, price, and market.
- If there's a product_link, include a "Ürüne git" phrase with the link.
- Keep it short, relevant, and natural.

Only respond with the final message in Turkish. Do not explain your process.`

const generalPrompt = `You are a helpful assistant that only answers general questions about grocery shopping, markets, food products, and consumer goods in Turkey.

- The user asked the following question in Turkish:
%s

- The chat history so far:
%s

Your task:
- Look at the conversation history to understand what products or topics were discussed previously.
- If the user is asking a follow-up question using words like "bu" (this), "o" (that), "bunlar" (these), understand what they're referring to from the context.
- If the question is about food, market chains (like Migros, A101), product types, shopping experience, cooking, usage of food products, etc., respond helpfully in Turkish.
- If the question is unrelated, say that you only assist with market and product-related questions.

Only reply in Turkish. Keep your answer short, natural, and helpful.`

const errorApologyPrompt = `The user asked the following question in Turkish:

%q

While trying to answer this using a product database, the following error occurred:
%q

Your task:
- Write a short, polite message in Turkish that explains something went wrong.
- If possible, hint at what might be the cause (e.g., product name not found, invalid format, etc.).
- Ask the user to rephrase or clarify their query.
- Do not include technical SQL jargon.
- Keep it friendly and natural, as if you're assisting a shopper.

Only output the final message in Turkish.`

const summarizePrompt = `You are helping to summarize a conversation between a user and a Turkish shopping assistant.

Please create a concise summary of the following conversation that preserves:
- Product names or categories the user has asked about
- Any preferences they've expressed (price ranges, stores, etc.)
- Important context that might be relevant for future questions

Previous summary (fold its facts into the new one):
%s

Conversation to summarize:
%s

Create a brief summary in Turkish that captures the essential context. Keep it under 100 words.`
