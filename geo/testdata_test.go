package geo

const familySOFT = `^DATABASE = GeoMiame
!Database_name = Gene Expression Omnibus (GEO)
^SERIES = GSE1000
!Series_title = Liver time course
!Series_sample_id = GSM1
!Series_sample_id = GSM2
!Series_sample_id = GSM3
^PLATFORM = GPL570
!Platform_title = HG-U133_Plus_2
#ID = array feature identifier
!platform_table_begin
ID	GB_ACC
1007_s_at	U48705
1053_at	M87338
!platform_table_end
^PLATFORM = GPL96
!Platform_title = HG-U133A
^SAMPLE = GSM1
!Sample_title = liver_rep1
!Sample_submission_date = Jan 15 2010
!Sample_characteristics_ch1 = tissue: liver
!Sample_characteristics_ch1 = age: 3
#ID_REF =
#VALUE = normalized signal
!sample_table_begin
ID_REF	VALUE
1007_s_at	5.2
1053_at	7.9
117_at	3.1
!sample_table_end
^SAMPLE = GSM2
!Sample_title = liver_rep2
!Sample_characteristics_ch1 = tissue: liver
^SAMPLE = GSM3
!Sample_title = liver_rep3
!Sample_characteristics_ch1 = tissue liver
`
