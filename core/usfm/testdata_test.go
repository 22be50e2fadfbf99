package usfm

// psalmSample exercises identification lines, headings, poetry, nested
// character spans, an empty milestone and an aligned word.
const psalmSample = `\id PSA unfoldingWord Literal Text
\usfm 3.0
\ide UTF-8
\sts 2
\h Psalms
\toc1 The Book of Psalms
\toc2 Psalms
\toc3 Psa
\mt Psalms
\c 1
\s Here comes a psalm
\s2 See also all the other psalms
\q
\v 1 Blessed is the \w man|Man\w* who \bd \+it does not\+it* walk\bd* in the advice of the wicked,
\q or stand in the pathway with sinners,
\q or sit in the assembly of mockers.\qs Selah\qs* Amen
\ts\*
\v 2 Beginning \zaln-s |x-strong="G5043" x-lemma="τέκνον" x-morph="Gr,N,,,,,NNP," x-occurrence="1" x-occurrences="1" x-content="τέκνα"\*\w milestone |x-occurrence="1" x-occurrences="1"\w*\zaln-e\*
`

const genesisSample = `\id GEN
\h Genesis
\mt1 Genesis
\c 1
\p
\v 1 In the beginning God created the heaven and the earth.
\v 2 And the earth was without form, and void; and darkness was upon the face of the deep.
\p
\v 3 And God said, Let there be light: and there was light.\f + \fr 1.3 \ft Or, \fq light \ft appeared.\f*
\c 2
\q1 Thus the heavens and the earth were finished,
\q2 and all the host of them.
`
