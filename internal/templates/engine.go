// Package templates is the deterministic, non-AI document generator.
//
// It is the primary drafting path for plans not entitled to AI drafting
// and the fallback when the model router fails. Each template renders a
// complete legal-document skeleton; missing field values become visible
// placeholder markers so partial input still produces a reviewable
// document.
package templates

import (
	"strconv"
	"strings"

	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// Supported document types.
const (
	TypeSaleDeed           = "sale_deed"
	TypeRentalAgreement    = "rental_agreement"
	TypeEmploymentContract = "employment_contract"
	TypeNDA                = "nda"
	TypePartnershipDeed    = "partnership_deed"
	TypeLoanAgreement      = "loan_agreement"
	TypeAffidavit          = "affidavit"
	TypeLegalNotice        = "legal_notice"
)

type renderer func(get func(string) string) string

// registry is fixed at process start. Unknown types are a typed failure.
var registry = map[string]renderer{
	TypeSaleDeed:           renderSaleDeed,
	TypeRentalAgreement:    renderRentalAgreement,
	TypeEmploymentContract: renderEmploymentContract,
	TypeNDA:                renderNDA,
	TypePartnershipDeed:    renderPartnershipDeed,
	TypeLoanAgreement:      renderLoanAgreement,
	TypeAffidavit:          renderAffidavit,
	TypeLegalNotice:        renderLegalNotice,
}

// SupportedTypes lists the document types the engine can render.
func SupportedTypes() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

// Generate renders the skeleton for documentType with fieldValues
// substituted. Deterministic string templating, no I/O. A missing field
// renders a placeholder marker rather than failing the generation.
// Unknown documentType returns *models.UnsupportedDocumentTypeError.
func Generate(documentType string, fieldValues map[string]string) (string, error) {
	render, ok := registry[strings.ToLower(strings.TrimSpace(documentType))]
	if !ok {
		return "", &models.UnsupportedDocumentTypeError{DocumentType: documentType}
	}

	get := func(field string) string {
		if v, ok := fieldValues[field]; ok && strings.TrimSpace(v) != "" {
			return v
		}
		return placeholder(field)
	}

	return render(get), nil
}

// placeholder renders the visible marker for a missing field.
func placeholder(field string) string {
	return "[___ " + strings.ToUpper(strings.ReplaceAll(field, "_", " ")) + " ___]"
}

// amountClause renders "Rs. <amount> (Rupees <words> only)" when the
// amount parses as an integer, otherwise the raw value or placeholder.
func amountClause(raw string) string {
	n, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return "Rs. " + raw
	}
	return "Rs. " + raw + " (Rupees " + AmountInWords(n) + " only)"
}

func renderSaleDeed(get func(string) string) string {
	var b strings.Builder
	b.WriteString("SALE DEED\n\n")
	b.WriteString("This Deed of Sale is executed on " + get("execution_date") + " at " + get("place") + "\n\n")
	b.WriteString("BETWEEN\n\n")
	b.WriteString(get("seller_name") + ", residing at " + get("seller_address") + " (hereinafter referred to as the \"SELLER\")\n\n")
	b.WriteString("AND\n\n")
	b.WriteString(get("buyer_name") + ", residing at " + get("buyer_address") + " (hereinafter referred to as the \"BUYER\").\n\n")
	b.WriteString("WHEREAS the Seller is the absolute owner of the property described in the Schedule below, having acquired it through " + get("title_source") + ";\n\n")
	b.WriteString("AND WHEREAS the Seller has agreed to sell and the Buyer has agreed to purchase the said property for a total consideration of " + get("sale_amount") + ";\n\n")
	b.WriteString("NOW THIS DEED WITNESSES:\n\n")
	b.WriteString("1. CONSIDERATION: The Buyer has paid the Seller the sum of " + get("sale_amount") + ", the receipt whereof the Seller hereby acknowledges.\n\n")
	b.WriteString("2. TRANSFER: The Seller hereby conveys, transfers and assigns unto the Buyer the property described in the Schedule, together with all rights, easements and appurtenances, TO HOLD the same absolutely forever.\n\n")
	b.WriteString("3. TITLE COVENANT: The Seller covenants that the property is free from all encumbrances, charges, liens and litigation, and that the Seller has full right and authority to convey the same.\n\n")
	b.WriteString("4. POSSESSION: Vacant and peaceful possession of the property has been delivered to the Buyer on execution of this Deed.\n\n")
	b.WriteString("5. REGISTRATION: The parties shall appear before the jurisdictional Sub-Registrar for registration of this Deed as required under the Registration Act, 1908.\n\n")
	b.WriteString("SCHEDULE OF PROPERTY\n" + get("property_description") + "\n\n")
	b.WriteString(signatureBlock(get, "SELLER", "seller_name", "BUYER", "buyer_name"))
	return b.String()
}

func renderRentalAgreement(get func(string) string) string {
	var b strings.Builder
	b.WriteString("RENTAL AGREEMENT\n\n")
	b.WriteString("This Rental Agreement is made on " + get("execution_date") + " at " + get("place") + "\n\n")
	b.WriteString("BETWEEN\n\n")
	b.WriteString(get("landlord_name") + ", residing at " + get("landlord_address") + " (hereinafter the \"LANDLORD\")\n\n")
	b.WriteString("AND\n\n")
	b.WriteString(get("tenant_name") + ", residing at " + get("tenant_address") + " (hereinafter the \"TENANT\").\n\n")
	b.WriteString("The Landlord lets out the premises at " + get("premises_address") + " to the Tenant on the following terms:\n\n")
	b.WriteString("1. TERM: The tenancy shall be for a period of " + get("term_months") + " months commencing " + get("commencement_date") + ".\n\n")
	b.WriteString("2. RENT: The Tenant shall pay a monthly rent of " + get("monthly_rent") + ", payable in advance on or before the 5th day of each English calendar month.\n\n")
	b.WriteString("3. SECURITY DEPOSIT: The Tenant has paid an interest-free refundable security deposit of " + get("security_deposit") + ", refundable on vacating the premises after deduction of lawful dues, if any.\n\n")
	b.WriteString("4. USE: The premises shall be used for residential purposes only and shall not be sublet without the Landlord's prior written consent.\n\n")
	b.WriteString("5. MAINTENANCE: The Tenant shall maintain the premises in good condition; structural repairs remain the Landlord's responsibility.\n\n")
	b.WriteString("6. TERMINATION: Either party may terminate this Agreement by giving " + get("notice_period_days") + " days' written notice to the other.\n\n")
	b.WriteString(signatureBlock(get, "LANDLORD", "landlord_name", "TENANT", "tenant_name"))
	return b.String()
}

func renderEmploymentContract(get func(string) string) string {
	var b strings.Builder
	b.WriteString("EMPLOYMENT CONTRACT\n\n")
	b.WriteString("This Contract of Employment is entered into on " + get("execution_date") + "\n\n")
	b.WriteString("BETWEEN\n\n")
	b.WriteString(get("employer_name") + ", having its office at " + get("employer_address") + " (the \"EMPLOYER\")\n\n")
	b.WriteString("AND\n\n")
	b.WriteString(get("employee_name") + ", residing at " + get("employee_address") + " (the \"EMPLOYEE\").\n\n")
	b.WriteString("1. POSITION: The Employee is appointed to the position of " + get("designation") + ", reporting as directed by the Employer.\n\n")
	b.WriteString("2. COMMENCEMENT: Employment commences on " + get("start_date") + " and includes a probation period of " + get("probation_months") + " months.\n\n")
	b.WriteString("3. REMUNERATION: The Employee shall receive an annual compensation of " + get("annual_salary") + ", payable in monthly instalments, subject to statutory deductions.\n\n")
	b.WriteString("4. HOURS AND LEAVE: Working hours and leave entitlements shall follow the Employer's policies and applicable law, including the Shops and Establishments Act of the concerned State.\n\n")
	b.WriteString("5. CONFIDENTIALITY: The Employee shall not, during or after employment, disclose any confidential information of the Employer except as required by law.\n\n")
	b.WriteString("6. TERMINATION: Either party may terminate this Contract by " + get("notice_period_days") + " days' written notice, or salary in lieu thereof, subject to applicable law.\n\n")
	b.WriteString(signatureBlock(get, "EMPLOYER", "employer_name", "EMPLOYEE", "employee_name"))
	return b.String()
}

func renderNDA(get func(string) string) string {
	var b strings.Builder
	b.WriteString("NON-DISCLOSURE AGREEMENT\n\n")
	b.WriteString("This Non-Disclosure Agreement is made on " + get("execution_date") + "\n\n")
	b.WriteString("BETWEEN\n\n")
	b.WriteString(get("disclosing_party") + " (the \"DISCLOSING PARTY\")\n\nAND\n\n")
	b.WriteString(get("receiving_party") + " (the \"RECEIVING PARTY\").\n\n")
	b.WriteString("1. PURPOSE: The parties wish to explore " + get("purpose") + ", in connection with which the Disclosing Party may share confidential information.\n\n")
	b.WriteString("2. CONFIDENTIAL INFORMATION: All non-public information disclosed in any form, including business plans, financial data, technical material and client lists, shall be Confidential Information.\n\n")
	b.WriteString("3. OBLIGATIONS: The Receiving Party shall use Confidential Information solely for the Purpose, protect it with no less than reasonable care, and not disclose it to any third party without prior written consent.\n\n")
	b.WriteString("4. EXCLUSIONS: Information that is public, independently developed, or lawfully received from a third party is not Confidential Information.\n\n")
	b.WriteString("5. TERM: The obligations herein survive for " + get("term_years") + " years from the date of disclosure.\n\n")
	b.WriteString("6. REMEDIES: Breach of this Agreement may cause irreparable harm; the Disclosing Party is entitled to seek injunctive relief in addition to damages.\n\n")
	b.WriteString(signatureBlock(get, "DISCLOSING PARTY", "disclosing_party", "RECEIVING PARTY", "receiving_party"))
	return b.String()
}

func renderPartnershipDeed(get func(string) string) string {
	var b strings.Builder
	b.WriteString("PARTNERSHIP DEED\n\n")
	b.WriteString("This Deed of Partnership is executed on " + get("execution_date") + " at " + get("place") + "\n\n")
	b.WriteString("BETWEEN\n\n")
	b.WriteString(get("partner_one_name") + ", residing at " + get("partner_one_address") + " (the \"FIRST PARTNER\")\n\nAND\n\n")
	b.WriteString(get("partner_two_name") + ", residing at " + get("partner_two_address") + " (the \"SECOND PARTNER\").\n\n")
	b.WriteString("1. FIRM: The partners shall carry on the business of " + get("business_nature") + " in partnership under the firm name \"" + get("firm_name") + "\" with its principal place of business at " + get("business_address") + ".\n\n")
	b.WriteString("2. CAPITAL: The initial capital of the firm shall be " + get("capital_amount") + ", contributed by the partners in the ratio " + get("capital_ratio") + ".\n\n")
	b.WriteString("3. PROFIT SHARING: Profits and losses shall be shared in the ratio " + get("profit_ratio") + ".\n\n")
	b.WriteString("4. MANAGEMENT: Each partner shall have equal rights in the management and conduct of the firm's business; major decisions require mutual consent.\n\n")
	b.WriteString("5. ACCOUNTS: Proper books of account shall be maintained at the principal place of business and closed on 31st March each year.\n\n")
	b.WriteString("6. RETIREMENT AND DISSOLUTION: The partnership is governed by the Indian Partnership Act, 1932; retirement, admission and dissolution shall follow its provisions unless varied in writing.\n\n")
	b.WriteString(signatureBlock(get, "FIRST PARTNER", "partner_one_name", "SECOND PARTNER", "partner_two_name"))
	return b.String()
}

func renderLoanAgreement(get func(string) string) string {
	// The loan template spells the numeral amount out in words on the
	// Indian scale, so the operative clause reads like a registrar copy.
	var b strings.Builder
	b.WriteString("LOAN AGREEMENT\n\n")
	b.WriteString("This Loan Agreement is made on " + get("execution_date") + "\n\n")
	b.WriteString("BETWEEN\n\n")
	b.WriteString(get("lender_name") + ", residing at " + get("lender_address") + " (the \"LENDER\")\n\nAND\n\n")
	b.WriteString(get("borrower_name") + ", residing at " + get("borrower_address") + " (the \"BORROWER\").\n\n")
	b.WriteString("1. LOAN: The Lender agrees to lend the Borrower a sum of " + amountClause(get("loan_amount")) + ", disbursed on execution of this Agreement.\n\n")
	b.WriteString("2. INTEREST: The loan shall carry simple interest at " + get("interest_rate") + "% per annum, computed from the date of disbursement.\n\n")
	b.WriteString("3. REPAYMENT: The Borrower shall repay the loan with interest within " + get("repayment_months") + " months, in equal monthly instalments commencing " + get("first_installment_date") + ".\n\n")
	b.WriteString("4. PREPAYMENT: The Borrower may prepay the outstanding amount in whole or in part without penalty.\n\n")
	b.WriteString("5. DEFAULT: On default of any instalment for more than 30 days, the entire outstanding balance becomes immediately due and payable.\n\n")
	b.WriteString("6. GOVERNING LAW: This Agreement is governed by the laws of India and the courts at " + get("jurisdiction") + " shall have exclusive jurisdiction.\n\n")
	b.WriteString(signatureBlock(get, "LENDER", "lender_name", "BORROWER", "borrower_name"))
	return b.String()
}

func renderAffidavit(get func(string) string) string {
	var b strings.Builder
	b.WriteString("AFFIDAVIT\n\n")
	b.WriteString("I, " + get("deponent_name") + ", aged " + get("deponent_age") + " years, residing at " + get("deponent_address") + ", do hereby solemnly affirm and state as follows:\n\n")
	b.WriteString("1. That I am the deponent herein and am well acquainted with the facts stated below.\n\n")
	b.WriteString("2. " + get("statement") + "\n\n")
	b.WriteString("3. That the contents of this affidavit are true and correct to the best of my knowledge and belief, and nothing material has been concealed therefrom.\n\n")
	b.WriteString("DEPONENT\n\n")
	b.WriteString("VERIFICATION\n\n")
	b.WriteString("Verified at " + get("place") + " on " + get("execution_date") + " that the contents of the above affidavit are true and correct to my knowledge.\n\n")
	b.WriteString("DEPONENT\n")
	return b.String()
}

func renderLegalNotice(get func(string) string) string {
	var b strings.Builder
	b.WriteString("LEGAL NOTICE\n\n")
	b.WriteString("To,\n" + get("recipient_name") + "\n" + get("recipient_address") + "\n\n")
	b.WriteString("Subject: " + get("subject") + "\n\n")
	b.WriteString("Under instructions from and on behalf of my client, " + get("client_name") + ", residing at " + get("client_address") + ", I serve upon you the following notice:\n\n")
	b.WriteString("1. " + get("grievance") + "\n\n")
	b.WriteString("2. You are hereby called upon to " + get("demand") + " within " + get("compliance_days") + " days of receipt of this notice.\n\n")
	b.WriteString("3. Should you fail to comply within the stipulated period, my client shall be constrained to initiate appropriate civil and/or criminal proceedings against you, at your sole risk as to costs and consequences.\n\n")
	b.WriteString("A copy of this notice is retained in my office for record and further action.\n\n")
	b.WriteString(get("advocate_name") + "\nAdvocate\n")
	return b.String()
}

// signatureBlock renders the common witness and signature footer.
func signatureBlock(get func(string) string, roleA, fieldA, roleB, fieldB string) string {
	var b strings.Builder
	b.WriteString("IN WITNESS WHEREOF the parties have signed this document on the date first above written.\n\n")
	b.WriteString(roleA + ":\n" + get(fieldA) + "\n\n")
	b.WriteString(roleB + ":\n" + get(fieldB) + "\n\n")
	b.WriteString("WITNESSES:\n1. ____________________\n2. ____________________\n")
	return b.String()
}
