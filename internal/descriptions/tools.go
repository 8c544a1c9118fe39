package descriptions

// Tool descriptions shown to MCP clients, with examples and workflows

const (
	ExamConvertFileDescription = `Extract the multiple-choice questions of a PDF exam and write them as an exam file.

**When to use:** A PDF holds numbered exam questions ("QUESTION NO: 1", lettered options, "Answer: B") and you need the quiz-player JSON for it.

**Why it's useful:** Reads the PDF text, splits it into questions, and records the correct option indexes, explanations and any rejected blocks in one step.

**Examples:**
• Convert a practice test: "Convert linux-essentials.pdf with the title 'Linux Essentials'"
• Choose the destination: "Convert exams/net.pdf to out/net.json"

**Common workflows:**
1. Conversion: exam_list_pdfs → exam_convert_file → exam_validate_file
2. Troubleshooting: exam_convert_file reports rejected questions → fix the PDF or rerun with another answer policy

**Best practices:** Paths are resolved inside the server directory; the output defaults to the PDF name with the configured format's extension.`

	ExamExtractTextDescription = `Extract multiple-choice questions from exam text and return the exam JSON directly.

**When to use:** The exam text is already available (copied from a document or produced by another tool) and no file should be written.

**Why it's useful:** Runs the same question extraction as exam_convert_file without any PDF parsing, which makes it easy to check how a block of text will be read.

**Examples:**
• Preview a single question: "Extract questions from 'QUESTION NO: 1\nWhat is 2+2?\nA. 3\nB. 4\nAnswer: B'"

**Best practices:** Keep one question marker per question and start each option on its own line with a letter from A to D followed by a period.`

	ExamValidateFileDescription = `Check that a JSON exam file can be loaded by the quiz player.

**When to use:** After a conversion, or before handing an exam file edited by hand to the player.

**Why it's useful:** Reports missing titles, empty option lists and out-of-range answers with the id of the offending question.

**Examples:**
• Verify output: "Validate exams/net.json"

**Best practices:** A failed validation is reported as text so the details can be shown to the user.`

	ExamListPDFsDescription = `List the PDF files available for conversion.

**When to use:** To discover which exam PDFs exist before converting them.

**Why it's useful:** Walks the directory tree and skips hidden directories, so the exam files can be picked by name.

**Examples:**
• Browse exams: "List PDFs in ./exams"

**Best practices:** The directory must be inside the server directory; omit it to search the whole server directory.`
)
