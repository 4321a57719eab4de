package assistant

import "strings"

// fallbackResponse answers a turn without the hosted model: the question
// is matched case-insensitively against a small set of topic buckets and
// a canned long-form answer is returned. The generic bucket always
// matches, so the fallback never returns an empty string.
func fallbackResponse(userMessage string) string {
	lower := strings.ToLower(userMessage)

	switch {
	case containsAny(lower, "actuary", "actuaries", "actuarial"):
		return actuaryAnswer
	case containsAny(lower, "pricing", "price", "premium", "rate"):
		return pricingAnswer
	case containsAny(lower, "risk", "assessment", "underwriting"):
		return riskAnswer
	case containsAny(lower, "hello", "hi", "help", "assist"):
		return greetingAnswer
	default:
		return genericAnswer(userMessage)
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

const actuaryAnswer = `WHAT ACTUARIES DO IN INSURANCE PRICING:

Actuaries are mathematical professionals central to insurance pricing:

1. RISK ASSESSMENT & MODELING — analyze historical data to predict future
   claims, develop statistical models for mortality and morbidity, and
   quantify uncertainty across customer segments.
2. PREMIUM CALCULATION — set competitive yet profitable rates that cover
   expected claims, expenses and profit margins, balancing affordability
   with financial stability.
3. PRODUCT DEVELOPMENT — design new products and coverage options, test
   viability through modeling, and ensure regulatory compliance.
4. FINANCIAL FORECASTING — project cash flows and liabilities, calculate
   reserves, and run stress tests and scenario analysis.
5. DATA ANALYSIS — interpret complex datasets, build predictive models for
   claims forecasting, and provide data-driven recommendations.

Key skills: advanced mathematics, statistics, programming (R/Python/SQL),
business acumen and communication.

Would you like me to explain any specific aspect of actuarial work in more
detail?`

const pricingAnswer = `INSURANCE PRICING METHODOLOGIES:

1. RISK-BASED PRICING — individual risk assessment across multiple
   factors, statistical modeling of claim likelihood, and segmentation of
   customers by risk profile.
2. ACTUARIAL MODELS — mortality tables for life products, loss ratios for
   property/casualty, frequency/severity models, and credibility theory
   for combining internal and external data.
3. KEY PRICING FACTORS — demographics, health status, coverage amount and
   policy terms such as deductibles, exclusions and waiting periods.
4. PRICING TECHNIQUES — experience rating from a company's own claims
   history, community rating, manual rating for complex risks, and
   credibility adjustments.
5. REGULATORY CONSIDERATIONS — rate filing and approval, anti-
   discrimination and fair pricing practices, solvency requirements and
   transparency standards.

Would you like me to dive deeper into any specific pricing methodology?`

const riskAnswer = `RISK ASSESSMENT IN INSURANCE:

1. RISK IDENTIFICATION — moral hazard, adverse selection, systemic risk
   and operational risk.
2. RISK QUANTIFICATION — probability of claims, severity of financial
   impact, correlation between risks, and stress testing under extreme
   scenarios.
3. UNDERWRITING PROCESS — application review, medical and financial
   underwriting, and classification of applicants by risk level.
4. RISK MANAGEMENT TOOLS — diversification, reinsurance, reserves and
   risk controls.
5. DATA-DRIVEN ASSESSMENT — predictive modeling on historical data,
   machine-learning risk scoring, real-time monitoring and fraud
   detection.

Would you like me to explain any specific aspect of risk assessment?`

const greetingAnswer = `HELLO! I'M YOUR AI PRICING ASSISTANT

I'm here to help with insurance pricing and actuarial analysis. While I'm
currently running in offline mode, I can provide guidance on:

- ACTUARIAL ANALYSIS: statistical modeling, mortality and morbidity
  analysis, reserve calculations and regulatory reporting.
- INSURANCE PRICING: risk-based methodologies, premium calculation,
  product development and competitive positioning.
- DATA ANALYSIS: predictive analytics, forecasting and performance
  measurement.
- RISK MANAGEMENT: underwriting guidelines, risk classification and
  portfolio optimization.

How can I help you today?`

func genericAnswer(userMessage string) string {
	return `I UNDERSTAND YOU'RE ASKING ABOUT: "` + userMessage + `"

I'm a specialized assistant for insurance pricing and actuarial analysis,
currently running in offline mode. I can provide guidance on actuarial
concepts (mortality tables, loss ratios, credibility theory), pricing
methodologies (risk-based pricing, experience rating, manual rating),
risk assessment and underwriting, data analysis, regulatory compliance
and product development.

Ask a specific question and I'll provide detailed, professional guidance
tailored to your needs.`
}
