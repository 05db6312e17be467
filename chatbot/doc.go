// Package chatbot implements a retrieval-augmented chatbot over a local
// document corpus.
//
// A Chatbot ties the pieces together: it ingests text documents into a
// persistent vector index, answers questions by retrieving the most relevant
// chunks and prompting an OpenAI chat model with them, keeps the running
// conversation as context for follow-ups, and exposes an interactive
// terminal loop. An optional knowledge graph enriches the session with
// document listings and corpus statistics.
package chatbot
