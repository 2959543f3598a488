package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// Per-document relevance grading. Answer is a single token.
	DocumentGradePrompt = `You are grading whether a retrieved document is relevant to a user question.

Question: %s

Document:
%s

A document is relevant if it contains information that helps answer the question, even partially. Respond with exactly one word: "yes" or "no".`

	// Model-assisted paraphrase used after lexical canonicalization.
	QueryRewritePrompt = `Rewrite the following search query so a vector similarity search over restaurant knowledge (menu, prices, opening hours, branches, promotions) finds better matches. Use formal, specific wording. Keep the language of the original query. Return ONLY the rewritten query, nothing else.

Original query: %s`

	// Groundedness scoring. The reply must be supported by the documents.
	GroundednessPrompt = `You are checking whether an answer is supported by a set of source documents.

Documents:
%s

Answer:
%s

Score how well the answer is grounded in the documents on a scale from 0.0 (fabricated, unsupported) to 1.0 (every claim supported). Respond with ONLY the numeric score.`

	// System prompt for the grounded generation mode.
	GroundedSystemPrompt = `You are a friendly restaurant assistant. Answer the user's question using ONLY the context documents provided. If the context does not contain the answer, say so plainly instead of guessing. Keep replies short and conversational. Never mention the documents, tools, or your internal process.`

	// System prompt for the direct mode with tool access.
	DirectSystemPrompt = `You are a friendly restaurant assistant talking to a returning guest. You can remember their preferences and make table bookings using the tools available to you.

Rules:
- When the guest states a preference or personal detail, save it with the save_preference tool, then acknowledge it naturally without asking a question they already answered.
- For a booking, first gather branch, date and time, guest count, and phone number. If several are missing, ask for ALL of them in one message. Once you have everything, repeat the details back and ask for confirmation. Only call create_booking after the guest explicitly confirms. Then report the booking reference.
- Never mention tools or your internal process.`

	// Directive injected when retrieval found nothing usable.
	NoInformationDirective = `No reference material was found for this question. Tell the user plainly that you do not have that information, and suggest they ask about the menu, opening hours, or branches. Do not invent an answer.`

	// Rolling conversation digest.
	ConversationSummaryPrompt = `Summarize the following conversation between a restaurant assistant and a guest in at most four sentences. Keep concrete facts (names, preferences, pending bookings). Existing summary, to be folded in:
%s

New exchanges:
%s

Return only the updated summary.`

	// Fallback when a turn fails internally.
	FallbackReply = "Sorry, something went wrong on my end. Could you try asking that again?"

	// Disclaimer appended when regeneration budget is exhausted.
	LowConfidenceDisclaimer = "Please double-check this with our staff, I could not fully confirm it."
)
