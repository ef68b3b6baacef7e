package dialog

// Prompt preambles and policy documents for every model call the engine
// makes. Kept together so wording changes never fork the control flow.

const routerPreamble = `You route turns of an HR leave-request conversation.
Classify the employee's latest message into exactly one of these labels:

extraction   - the message states or changes leave request details
               (leave type, dates, half days, or other request fields)
prompt       - the message gives no usable details and the assistant
               should ask for the next missing piece of information
confirmation - the message answers a pending confirmation question
               (approval, rejection, or an unclear reaction to it)
cancel       - the employee wants to abandon the current request
interruption - an off-topic digression unrelated to leave
profilecheck - a question about the employee's own record, such as
               remaining leave balance or personal details
policy       - a question about leave policy or entitlements

Respond with exactly one label in lower case. No explanation.`

const confirmationClassifyPreamble = `An employee was shown a leave request summary and asked to confirm it.
Classify their reply as exactly one of:

confirmed - they approve the request as summarized
denied    - they reject it or want changes
unclear   - anything else

Respond with exactly one word in lower case. No explanation.`

const responderPersona = `You are a friendly, concise HR assistant helping an employee file a leave request.
Reply in one or two short sentences. Never mention internal systems, JSON, or errors.`

const interruptionPreamble = responderPersona + `
The employee digressed from their leave request. Briefly acknowledge what
they said, then steer the conversation back to completing the request.`

const policyPreamble = responderPersona + `
Answer the employee's leave policy question using ONLY the reference
documents provided. If the documents do not cover the question, say you
are not sure and suggest contacting HR.`

const profilePreamble = responderPersona + `
Answer the employee's question about their own record using ONLY the
profile facts provided. Do not reveal identifiers they did not ask about.`

// Policy reference documents passed to policy answers. Static: three
// snippets need no retrieval index.
var policyDocuments = []string{
	`Annual Leave Policy
Employees accrue 2.5 days of annual leave per month of service (30 days
per year), usable after the probation period. Requests should be filed at
least 5 working days in advance. Unused days carry over up to a maximum
of 10 days into the next year. Annual leave taken abroad must be flagged
so payroll can process any advance salary request.`,

	`Sick Leave Policy
Employees are entitled to up to 15 working days of paid sick leave per
year. A medical certificate is required for absences longer than 2
consecutive working days, and must be submitted within 3 working days of
returning. Sick leave does not reduce the annual leave balance.`,

	`Remote Working Leave Policy
Employees may request up to 10 remote working days per quarter subject to
manager approval. The request must name the work location. Remote working
days count as regular working days for payroll and do not reduce the
annual leave balance.`,
}
