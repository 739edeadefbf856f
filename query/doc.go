// Package query implements the question answering side of recall.
//
// A query runs in three stages. The retriever embeds the question once
// and searches it against every collection the user owns, in parallel,
// keeping only segments whose cosine similarity clears the threshold.
// The context builder joins the surviving segments into a single context
// block, or a placeholder when nothing survives. The generator then asks
// the chat model for an answer grounded in that context, replaying the
// last few turns of conversation history.
//
// Retrieval degrades rather than fails: a collection that cannot be
// searched is skipped with a warning, and a generation failure produces
// an error-bearing answer instead of aborting the conversation.
package query
