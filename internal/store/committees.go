// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package store

// Committee is a process-constant domain value: the fixed 48-entry set of
// congressional committees (spec.md §3). It has no lifecycle of its own;
// the set is seeded into the committees table by the baseline migration and
// never mutated at runtime.
type Committee struct {
	Code        string
	DisplayName string
}

// allCommittees is the canonical 48-entry committee set used by the
// politician-enrichment pass's committee-filter sweep (spec.md §4.5,
// pass 2) and by trade/committee join extraction (spec.md §4.2, §9).
var allCommittees = []Committee{
	{"HSAG", "House Committee on Agriculture"},
	{"HSAP", "House Committee on Appropriations"},
	{"HSAS", "House Committee on Armed Services"},
	{"HSBA", "House Committee on the Budget"},
	{"HSBU", "House Committee on Financial Services"},
	{"HSED", "House Committee on Education and the Workforce"},
	{"HSEG", "House Committee on Energy and Commerce"},
	{"HSFA", "House Committee on Foreign Affairs"},
	{"HSHA", "House Committee on House Administration"},
	{"HSHM", "House Committee on Homeland Security"},
	{"HSIF", "House Committee on Natural Resources"},
	{"HSGO", "House Committee on Oversight and Accountability"},
	{"HSJU", "House Committee on the Judiciary"},
	{"HSPW", "House Committee on Transportation and Infrastructure"},
	{"HSRU", "House Committee on Rules"},
	{"HSSM", "House Committee on Small Business"},
	{"HSSO", "House Committee on Ethics"},
	{"HSSY", "House Committee on Science, Space, and Technology"},
	{"HSVR", "House Committee on Veterans' Affairs"},
	{"HSWM", "House Committee on Ways and Means"},
	{"HLIG", "House Permanent Select Committee on Intelligence"},
	{"HSZS", "House Select Committee on Strategic Competition with China"},
	{"SSAF", "Senate Committee on Agriculture, Nutrition, and Forestry"},
	{"SSAP", "Senate Committee on Appropriations"},
	{"SSAS", "Senate Committee on Armed Services"},
	{"SSBK", "Senate Committee on Banking, Housing, and Urban Affairs"},
	{"SSBU", "Senate Committee on the Budget"},
	{"SSCM", "Senate Committee on Commerce, Science, and Transportation"},
	{"SSEG", "Senate Committee on Energy and Natural Resources"},
	{"SSEV", "Senate Committee on Environment and Public Works"},
	{"SSFI", "Senate Committee on Finance"},
	{"SSFR", "Senate Committee on Foreign Relations"},
	{"SSGA", "Senate Committee on Homeland Security and Governmental Affairs"},
	{"SSHR", "Senate Committee on Health, Education, Labor, and Pensions"},
	{"SSJU", "Senate Committee on the Judiciary"},
	{"SSRA", "Senate Committee on Rules and Administration"},
	{"SSSB", "Senate Committee on Small Business and Entrepreneurship"},
	{"SSVA", "Senate Committee on Veterans' Affairs"},
	{"SLET", "Senate Select Committee on Ethics"},
	{"SLIN", "Senate Select Committee on Intelligence"},
	{"SLIA", "Senate Special Committee on Aging"},
	{"JSEC", "Joint Economic Committee"},
	{"JSLC", "Joint Committee on the Library"},
	{"JSPR", "Joint Committee on Printing"},
	{"JSTX", "Joint Committee on Taxation"},
	{"HSCC", "House Committee on Transportation and Infrastructure, Subcommittee on Coast Guard and Maritime Transportation"},
	{"HSIG", "House Committee on Oversight, Subcommittee on Cybersecurity"},
	{"SSCI", "Senate Committee on Commerce, Subcommittee on Communications"},
	{"SSFD", "Senate Committee on Appropriations, Subcommittee on Defense"},
}
