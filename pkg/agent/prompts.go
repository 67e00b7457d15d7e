package agent

import (
	"fmt"
	"strings"
)

const defaultTopicHint = "renewable energy, climate change, or sustainability"

// failureText is stored in a stage's output field when dispatch exhausts
// every provider. It deliberately carries the "Error" prefix the relevance
// heuristic looks for.
const failureText = "Error: All AI providers failed. Please check API keys and try again."

const planSystemPrompt = "You are a planning assistant. Analyze if a question needs information retrieval from a knowledge base."

const answerSystemPrompt = "You are a helpful AI assistant that provides accurate and comprehensive answers."

const reflectSystemPrompt = "You are an evaluation assistant that critically analyzes answer quality for relevance, accuracy, and completeness."

func planPrompt(question, topicHint string) string {
	return fmt.Sprintf(`Analyze the following question and determine if it requires retrieving information from a knowledge base about %s.

Question: %s

Return only 'YES' or 'NO'. Questions about facts, definitions, comparisons, or specific information need retrieval.
Simple greetings or general questions don't need retrieval.`, topicHint, question)
}

func answerPrompt(question, contextBlock string, needsRetrieval bool) string {
	if needsRetrieval && contextBlock != "" {
		return fmt.Sprintf(`Based on the following context, please answer the question comprehensively. If the context doesn't contain relevant information, clearly state that.

Context:
%s

Question: %s

Please provide a detailed, accurate, and well-structured answer:`, contextBlock, question)
	}
	return fmt.Sprintf(`Please answer the following question based on your general knowledge:

Question: %s

Please provide a helpful and accurate answer:`, question)
}

func reflectPrompt(question, answer, contextBlock string) string {
	contextUsed := contextBlock
	if contextUsed == "" {
		contextUsed = "No specific context used"
	}
	return fmt.Sprintf(`Evaluate the following Q&A pair for relevance, accuracy, and completeness:

Question: %s
Answer: %s
Context Used: %s

Please provide a comprehensive evaluation with:
1. Relevance score (1-10): How well the answer addresses the question
2. Accuracy score (1-10): How factually correct the answer is based on context
3. Completeness score (1-10): How comprehensive the answer is
4. Specific feedback on improvements needed
5. Overall assessment

Format your response clearly:`, question, answer, contextUsed)
}

// FormatContext renders retrieved documents as the context block handed to
// the answer prompt: source/content pairs separated by a blank line, in
// retrieval order.
func FormatContext(docs []Document) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		source := doc.Metadata["source"]
		if source == "" {
			source = "unknown"
		}
		blocks = append(blocks, fmt.Sprintf("Source: %s\nContent: %s", source, doc.Content))
	}
	return strings.Join(blocks, "\n\n")
}
