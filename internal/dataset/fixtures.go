package dataset

import "sumbench/pkg/types"

// builtinSamples is a small fixed set spanning short news, technical
// prose, and a longer narrative, so a fixture run still exercises a
// spread of input lengths.
func builtinSamples() []types.DatasetSample {
	return []types.DatasetSample{
		{
			Text: "The city council voted on Tuesday to approve a new public transit plan " +
				"that will add three bus rapid transit lines by 2028. The plan, funded by a " +
				"combination of federal grants and a modest increase in parking fees, is " +
				"expected to cut average commute times in the eastern districts by up to " +
				"twenty minutes. Opponents argued the parking fee increase would hurt small " +
				"businesses downtown, but an independent economic review commissioned by the " +
				"council found the impact would be negligible compared to the projected gains " +
				"from reduced congestion.",
			ReferenceSummary: "City council approved a transit plan adding three bus rapid " +
				"transit lines by 2028, funded by grants and parking fees.",
		},
		{
			Text: "Researchers at the institute announced a breakthrough in solid-state " +
				"battery design, demonstrating a prototype cell that retains 92 percent of " +
				"its capacity after 10,000 charge cycles. The cell replaces the liquid " +
				"electrolyte with a ceramic composite that remains stable at temperatures " +
				"up to 80 degrees Celsius, addressing the two failure modes that have kept " +
				"solid-state designs out of mass production: dendrite formation and " +
				"interface cracking. Commercial partners expect pilot manufacturing to " +
				"begin within three years.",
			ReferenceSummary: "A prototype solid-state battery retains 92% capacity after " +
				"10,000 cycles using a stable ceramic electrolyte.",
		},
		{
			Text: "When the lighthouse keeper finally retired after forty-one years, the " +
				"village held a festival that lasted three days. Fishermen who had steered " +
				"home by his lamp through winter storms brought him carved oars; children " +
				"who knew him only as the quiet man on the cliff brought drawings of the " +
				"tower. On the last evening he climbed the spiral stairs one final time, " +
				"lit the lamp himself although the light had long been automated, and stood " +
				"watching the beam sweep the water until midnight. Nobody asked him to come " +
				"down, and nobody remembers who started the song that carried up from the " +
				"harbor, but everyone agrees the light seemed brighter that night.",
			ReferenceSummary: "A village celebrates its retiring lighthouse keeper of 41 " +
				"years, who lights the lamp himself one last time.",
		},
	}
}
